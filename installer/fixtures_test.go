package installer_test

import (
	"strings"

	"github.com/cloudfoundry/policy-bundle-installer/bundle"
	bundlefakes "github.com/cloudfoundry/policy-bundle-installer/bundle/fakes"
	"github.com/cloudfoundry/policy-bundle-installer/mgmt"
	"github.com/cloudfoundry/policy-bundle-installer/policy"
)

const l7Namespace = `xmlns:l7="` + mgmt.NSGatewayManagement + `"`

var bodyEscaper = strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;", `"`, "&quot;")

func enumerationXML(entities ...string) string {
	return `<l7:List ` + l7Namespace + `>` + strings.Join(entities, "") + `</l7:List>`
}

func folderXML(id, parentID, name string) string {
	parent := ""
	if parentID != "" {
		parent = ` folderId="` + parentID + `"`
	}
	return `<l7:Folder ` + l7Namespace + parent + ` id="` + id + `"><l7:Name>` + name + `</l7:Name></l7:Folder>`
}

func policyXML(guid, folderID, name, body string) string {
	return `<l7:Policy ` + l7Namespace + ` guid="` + guid + `" id="1">` +
		`<l7:PolicyDetail folderId="` + folderID + `" guid="` + guid + `" id="1">` +
		`<l7:Name>` + name + `</l7:Name><l7:PolicyType>Include</l7:PolicyType></l7:PolicyDetail>` +
		resourcesXML(body) +
		`</l7:Policy>`
}

func serviceXML(id, folderID, name string, patterns []string, body string) string {
	mappings := ""
	if len(patterns) > 0 {
		mappings = `<l7:ServiceMappings>`
		for _, pattern := range patterns {
			mappings += `<l7:HttpMapping><l7:UrlPattern>` + pattern + `</l7:UrlPattern><l7:Verbs><l7:Verb>POST</l7:Verb></l7:Verbs></l7:HttpMapping>`
		}
		mappings += `</l7:ServiceMappings>`
	}

	return `<l7:Service ` + l7Namespace + ` id="` + id + `">` +
		`<l7:ServiceDetail folderId="` + folderID + `" id="` + id + `">` +
		`<l7:Name>` + name + `</l7:Name><l7:Enabled>true</l7:Enabled>` + mappings +
		`</l7:ServiceDetail>` +
		resourcesXML(body) +
		`</l7:Service>`
}

func certificateXML(id, name string) string {
	return `<l7:TrustedCertificate ` + l7Namespace + ` id="` + id + `"><l7:Name>` + name + `</l7:Name>` +
		`<l7:CertificateData><l7:Encoded>MIIBtjCCAV+gAwIBAgIJAK</l7:Encoded></l7:CertificateData></l7:TrustedCertificate>`
}

func jdbcConnectionXML(name string) string {
	return `<l7:JDBCConnection ` + l7Namespace + `><l7:Name>` + name + `</l7:Name></l7:JDBCConnection>`
}

func resourcesXML(body string) string {
	return `<l7:Resources><l7:ResourceSet tag="policy"><l7:Resource type="policy">` +
		bodyEscaper.Replace(body) +
		`</l7:Resource></l7:ResourceSet></l7:Resources>`
}

func policyBody(assertions ...string) string {
	return `<?xml version="1.0" encoding="UTF-8"?>` +
		`<wsp:Policy xmlns:L7p="` + policy.NSPolicy + `" xmlns:wsp="` + policy.NSWSPolicy + `">` +
		`<wsp:All wsp:Usage="Required">` + strings.Join(assertions, "") + `</wsp:All></wsp:Policy>`
}

func includeAssertion(guid string) string {
	return `<L7p:Include><L7p:PolicyGuid stringValue="` + guid + `"/></L7p:Include>`
}

func jdbcAssertion(connection string) string {
	return `<L7p:JdbcQuery><L7p:ConnectionName stringValue="` + connection + `"/>` +
		`<L7p:SqlQuery stringValue="select 1"/></L7p:JdbcQuery>`
}

func auditAssertion() string {
	return `<L7p:AuditDetailAssertion><L7p:Detail stringValue="hello"/></L7p:AuditDetailAssertion>`
}

const (
	oauthFolderID   = "123"
	managerFolderID = "124"

	tokenFragmentGUID  = "f0eb1f7b-392b-40a4-9f4f-46d00ffad3d3"
	clientFragmentGUID = "60cec430-0767-429c-8eff-62891c2eb343"
	requireTokenGUID   = "1ac94a7f-8e43-4dc9-9b7b-3c2a5e7b6e11"
)

// oauthBundle is a small bundle: two folders, three policies of which one
// includes the other two, two services and one certificate.
func oauthBundle() (bundle.Info, *bundlefakes.FakeResolver) {
	info := bundle.Info{
		ID:              "1c2a2874-df8d-4e1d-b8b0-099b576407e1",
		Version:         "1.0",
		Name:            "OAuth 2.0",
		JdbcConnections: []string{"OAuth", "Audit"},
	}

	resolver := bundlefakes.NewFakeResolver()
	resolver.AddBundle(info)

	resolver.AddItem(info.ID, bundle.KindFolder, enumerationXML(
		folderXML("-5002", "", "Root Node"),
		folderXML(oauthFolderID, "-5002", "OAuth"),
		folderXML(managerFolderID, oauthFolderID, "Manager"),
	))

	resolver.AddItem(info.ID, bundle.KindPolicy, enumerationXML(
		policyXML(requireTokenGUID, oauthFolderID, "Require OAuth Token",
			policyBody(includeAssertion(tokenFragmentGUID), includeAssertion(clientFragmentGUID), includeAssertion(tokenFragmentGUID))),
		policyXML(tokenFragmentGUID, oauthFolderID, "Token Lookup", policyBody(jdbcAssertion("OAuth"))),
		policyXML(clientFragmentGUID, managerFolderID, "Client Lookup", policyBody(auditAssertion())),
	))

	resolver.AddItem(info.ID, bundle.KindService, enumerationXML(
		serviceXML("5001", oauthFolderID, "OAuth Token Service", []string{"/auth/oauth/v2/token"},
			policyBody(includeAssertion(requireTokenGUID), jdbcAssertion("OAuth"))),
		serviceXML("5002", managerFolderID, "OAuth Manager", []string{"oauth/manager"},
			policyBody(jdbcAssertion("Audit"))),
	))

	resolver.AddItem(info.ID, bundle.KindTrustedCertificate, enumerationXML(
		certificateXML("7001", "oauth-signing"),
	))

	return info, resolver
}

// resourceBodies returns the policy bodies held by the given entities.
func resourceBodies(records []string) []string {
	var bodies []string
	for _, record := range records {
		resources, err := mgmt.ParseEntities([]byte(record), "Resource")
		if err != nil {
			panic(err)
		}
		for _, resource := range resources {
			bodies = append(bodies, resource.Text)
		}
	}
	return bodies
}
