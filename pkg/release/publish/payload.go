package publish

import (
	"fmt"

	"github.com/williamokano/apk_releaser/pkg/prompt"
)

// NotesSentinel ends the multi-line release notes answer
const NotesSentinel = "END"

// Payload is the version record sent to the app-update API
type Payload struct {
	Platform     string `json:"platform"`
	Version      string `json:"version"`
	VersionCode  int    `json:"versionCode"`
	BuildNumber  int    `json:"buildNumber"`
	ReleaseNotes string `json:"releaseNotes"`
	ForceUpdate  bool   `json:"forceUpdate"`
	DownloadURL  string `json:"downloadUrl"`
	IsActive     bool   `json:"isActive"`
}

// CollectPayload asks the operator for the version details of downloadURL
func CollectPayload(p *prompt.Prompter, downloadURL, platform string) (Payload, error) {
	version, err := p.String("Version (e.g. 1.1.6)")
	if err != nil {
		return Payload{}, fmt.Errorf("version: %w", err)
	}

	versionCode, err := p.Int("versionCode (positive integer)")
	if err != nil {
		return Payload{}, fmt.Errorf("versionCode: %w", err)
	}

	buildNumber, err := p.Int("buildNumber (positive integer)")
	if err != nil {
		return Payload{}, fmt.Errorf("buildNumber: %w", err)
	}

	notes, err := p.Text("Release notes", NotesSentinel)
	if err != nil {
		return Payload{}, fmt.Errorf("release notes: %w", err)
	}

	force, err := p.YesNo("Force update", false)
	if err != nil {
		return Payload{}, fmt.Errorf("force update: %w", err)
	}

	return Payload{
		Platform:     platform,
		Version:      version,
		VersionCode:  versionCode,
		BuildNumber:  buildNumber,
		ReleaseNotes: notes,
		ForceUpdate:  force,
		DownloadURL:  downloadURL,
		IsActive:     true,
	}, nil
}
