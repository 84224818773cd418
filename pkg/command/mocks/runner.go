// Code generated manually. DO NOT EDIT.

package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"
	"github.com/williamokano/apk_releaser/pkg/command"
)

// MockRunner is a mock implementation of the command.Runner interface
type MockRunner struct {
	mock.Mock
}

// LookPath provides a mock function with given fields: name
func (m *MockRunner) LookPath(name string) (string, error) {
	ret := m.Called(name)

	var r0 string
	var r1 error
	if rf, ok := ret.Get(0).(func(string) (string, error)); ok {
		return rf(name)
	}
	r0 = ret.String(0)
	r1 = ret.Error(1)

	return r0, r1
}

// Run provides a mock function with given fields: ctx, c
func (m *MockRunner) Run(ctx context.Context, c command.Cmd) error {
	ret := m.Called(ctx, c)

	var r0 error
	if rf, ok := ret.Get(0).(func(context.Context, command.Cmd) error); ok {
		r0 = rf(ctx, c)
	} else {
		r0 = ret.Error(0)
	}

	return r0
}

// Output provides a mock function with given fields: ctx, c
func (m *MockRunner) Output(ctx context.Context, c command.Cmd) ([]byte, error) {
	ret := m.Called(ctx, c)

	var r0 []byte
	var r1 error
	if rf, ok := ret.Get(0).(func(context.Context, command.Cmd) ([]byte, error)); ok {
		return rf(ctx, c)
	}
	if ret.Get(0) != nil {
		r0 = ret.Get(0).([]byte)
	}
	r1 = ret.Error(1)

	return r0, r1
}

// NewMockRunner creates a new instance of MockRunner
func NewMockRunner(t interface {
	mock.TestingT
	Cleanup(func())
}) *MockRunner {
	m := &MockRunner{}
	m.Mock.Test(t)

	t.Cleanup(func() { m.AssertExpectations(t) })

	return m
}
