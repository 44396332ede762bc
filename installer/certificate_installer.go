package installer

import (
	"strings"

	boshlog "github.com/cloudfoundry/bosh-utils/logger"

	"github.com/cloudfoundry/policy-bundle-installer/bundle"
	"github.com/cloudfoundry/policy-bundle-installer/mgmt"
)

const certificateInstallerLogTag = "CertificateInstaller"

type CertificateInstaller struct {
	client ManagementClient
	logger boshlog.Logger
}

func NewCertificateInstaller(client ManagementClient, logger boshlog.Logger) CertificateInstaller {
	return CertificateInstaller{client: client, logger: logger}
}

// Install adds the bundle's trusted certificates. Certificates are unique by
// name; an existing certificate of the same name is reused.
func (i CertificateInstaller) Install(ctx *Context, maps IdentifierMaps) error {
	certificates, err := loadEntities(ctx, bundle.KindTrustedCertificate, true)
	if err != nil {
		return err
	}

	for _, certificate := range certificates {
		oldID := strings.TrimSpace(certificate.Attr("id"))
		name := childText(certificate, "Name")
		if name == "" {
			return bundle.NewInvalidBundleError(bundle.KindTrustedCertificate, oldID, "certificate without name")
		}
		if oldID == "" {
			oldID = name
		}

		if _, done := maps.Certificates.Get(oldID); done {
			continue
		}

		if ctx.IsCancelled() {
			return errCancelled
		}

		i.logger.Debug(certificateInstallerLogTag, "Creating trusted certificate '%s'", name)

		result, err := i.client.Create(mgmt.ResourceTrustedCertificates, certificate.String())
		if err != nil {
			return entityError(bundle.KindTrustedCertificate, oldID, err)
		}

		newID, err := i.installedID(result, name)
		if err != nil {
			return entityError(bundle.KindTrustedCertificate, oldID, err)
		}

		err = maps.Certificates.Put(oldID, newID)
		if err != nil {
			return entityError(bundle.KindTrustedCertificate, oldID, err)
		}
	}

	return nil
}

func (i CertificateInstaller) installedID(result mgmt.CreateResult, name string) (string, error) {
	switch result.Outcome {
	case mgmt.Created:
		return result.ID, nil

	case mgmt.AlreadyExisted:
		i.logger.Info(certificateInstallerLogTag, "Trusted certificate '%s' already exists, reusing it", name)

		ids, err := i.client.FindIDs(mgmt.ResourceTrustedCertificates, mgmt.TrustedCertificateByName(name))
		if err != nil {
			return "", err
		}
		if len(ids) == 0 {
			return "", mgmt.UnexpectedResponseError{
				Request: result.Request.Text,
				Reason:  "trusted certificate '" + name + "' already exists but could not be found",
			}
		}
		return ids[0], nil

	default:
		return "", result.Err()
	}
}
