package bundle

import (
	"encoding/xml"
	"strings"

	bosherr "github.com/cloudfoundry/bosh-utils/errors"
)

const InfoNamespace = "http://ns.l7tech.com/2012/09/policy-bundle"

// Info describes one installable bundle as catalogued from its BundleInfo.xml.
type Info struct {
	ID              string
	Version         string
	Name            string
	Description     string
	JdbcConnections []string
}

type infoDocument struct {
	XMLName         xml.Name `xml:"BundleInfo"`
	ID              string   `xml:"Id"`
	Version         string   `xml:"Version"`
	Name            string   `xml:"Name"`
	Description     string   `xml:"Description"`
	JdbcConnections []string `xml:"JdbcConnections>JdbcConnection"`
}

func ParseInfo(content []byte) (Info, error) {
	var doc infoDocument

	err := xml.Unmarshal(content, &doc)
	if err != nil {
		return Info{}, bosherr.WrapError(err, "Unmarshalling bundle info")
	}

	info := Info{
		ID:          strings.TrimSpace(doc.ID),
		Version:     strings.TrimSpace(doc.Version),
		Name:        strings.TrimSpace(doc.Name),
		Description: strings.TrimSpace(doc.Description),
	}

	if info.ID == "" {
		return Info{}, bosherr.Error("Missing bundle id")
	}

	seen := map[string]bool{}
	for _, name := range doc.JdbcConnections {
		name = strings.TrimSpace(name)
		if name == "" || seen[name] {
			continue
		}
		seen[name] = true
		info.JdbcConnections = append(info.JdbcConnections, name)
	}

	return info, nil
}

func (i Info) String() string {
	return i.Name + " (" + i.ID + ")"
}
