package mgmt

import (
	"strings"
)

func FolderByParentAndName(parentID, name string) string {
	return "/l7:Folder[@folderId=" + XPathLiteral(parentID) + "]/l7:Name[text()=" + XPathLiteral(name) + "]"
}

func PolicyByName(name string) string {
	return "/l7:Policy/l7:PolicyDetail/l7:Name[text()=" + XPathLiteral(name) + "]"
}

func PolicyByFolderAndName(folderID, name string) string {
	return "/l7:Policy/l7:PolicyDetail[@folderId=" + XPathLiteral(folderID) + "]/l7:Name[text()=" + XPathLiteral(name) + "]"
}

func ServiceByURLPattern(pattern string) string {
	return "/l7:Service/l7:ServiceDetail/l7:ServiceMappings/l7:HttpMapping/l7:UrlPattern[text()=" + XPathLiteral(pattern) + "]"
}

func ServiceByName(name string) string {
	return "/l7:Service/l7:ServiceDetail/l7:Name[text()=" + XPathLiteral(name) + "]"
}

func TrustedCertificateByName(name string) string {
	return "/l7:TrustedCertificate/l7:Name[text()=" + XPathLiteral(name) + "]"
}

func JdbcConnectionByName(name string) string {
	return "/l7:JDBCConnection/l7:Name[text()=" + XPathLiteral(name) + "]"
}

// XPathLiteral quotes s as an XPath 1.0 string literal.
func XPathLiteral(s string) string {
	if !strings.Contains(s, "'") {
		return "'" + s + "'"
	}
	if !strings.Contains(s, `"`) {
		return `"` + s + `"`
	}

	parts := strings.Split(s, "'")
	quoted := make([]string, 0, 2*len(parts))
	for i, part := range parts {
		if i > 0 {
			quoted = append(quoted, `"'"`)
		}
		if part != "" {
			quoted = append(quoted, "'"+part+"'")
		}
	}
	return "concat(" + strings.Join(quoted, ", ") + ")"
}
