package pipeline

import (
	"errors"
	"fmt"
	"strings"

	"github.com/williamokano/apk_releaser/pkg/artifact"
	"github.com/williamokano/apk_releaser/pkg/config"
	"github.com/williamokano/apk_releaser/pkg/envfile"
	"github.com/williamokano/apk_releaser/pkg/prompt"
	"github.com/williamokano/apk_releaser/pkg/release"
	"github.com/williamokano/apk_releaser/pkg/release/publish"
	"github.com/williamokano/apk_releaser/pkg/release/template"
	"github.com/williamokano/apk_releaser/pkg/storage"
	s3storage "github.com/williamokano/apk_releaser/pkg/storage/s3"
)

// Remediation returns hints an operator can act on for err. Unknown errors
// get none.
func Remediation(err error) []string {
	if err == nil {
		return nil
	}

	var (
		buildErr   *artifact.BuildError
		missingErr *storage.MissingOptionsError
		httpErr    *publish.HTTPError
		connErr    *publish.ConnError
		schemaErr  *config.ValidationError
	)

	switch {
	case errors.As(err, &buildErr):
		hints := []string{"Build manually: " + buildErr.ManualCommand()}
		if errors.Is(err, artifact.ErrBuildToolNotFound) {
			hints = append(hints, "Install flutter or fvm and make sure it is on PATH")
		}
		return hints
	case errors.Is(err, artifact.ErrProjectDirMissing):
		return []string{"Check project_dir (or --project-dir) points at the Flutter project"}
	case errors.Is(err, artifact.ErrArtifactMissing):
		return []string{"Check artifact_path (or --artifact) matches the build output"}

	case errors.Is(err, envfile.ErrNotFound):
		return []string{"Create the env file or pass --env-file"}
	case errors.As(err, &missingErr):
		return []string{fmt.Sprintf("Set %s in the env file", strings.Join(missingErr.Keys, ", "))}

	case errors.Is(err, storage.ErrTLS):
		return []string{
			"Check HTTPS proxies and the certificate chain, or set " + s3storage.KeyCABundle + " to a custom CA bundle",
			"For troubleshooting only, " + s3storage.KeyVerifySSL + "=false disables verification",
		}
	case errors.Is(err, storage.ErrConnFailed):
		return []string{fmt.Sprintf("Check the network, %s and %s", s3storage.KeyRegion, s3storage.KeyEndpoint)}
	case errors.Is(err, storage.ErrAuthFailed):
		return []string{"Check the storage credentials in the env file"}

	case errors.As(err, &httpErr):
		return []string{"The publish API rejected the release; fix the reported fields and publish again"}
	case errors.As(err, &connErr):
		return []string{fmt.Sprintf("Check %s and that the publish API is running", publish.KeyBaseURL)}
	case errors.Is(err, prompt.ErrInputClosed):
		return []string{"Run the release from an interactive terminal"}

	case errors.Is(err, template.ErrTemplateNotFound), errors.Is(err, template.ErrNoTemplatePath):
		return []string{"Check template.path (or --template)"}
	case errors.Is(err, template.ErrLinkNotFound), errors.Is(err, template.ErrAmbiguousLink):
		return []string{"Make sure exactly one <a> with the download text or href=\"#\" directly follows the marker comment"}

	case errors.As(err, &schemaErr), errors.Is(err, release.ErrUnknownSink), errors.Is(err, storage.ErrInvalidConfig):
		return []string{"Fix the configuration; run validate-config to check the file"}
	}

	return nil
}
