package policy_test

const routingAndJdbcPolicy = `<?xml version="1.0" encoding="UTF-8"?>
<wsp:Policy xmlns:L7p="http://www.layer7tech.com/ws/policy" xmlns:wsp="http://schemas.xmlsoap.org/ws/2002/12/policy">
    <wsp:All wsp:Usage="Required">
        <L7p:CommentAssertion>
            <L7p:Comment stringValue="Implements the token endpoint for OAuth 1.0"/>
        </L7p:CommentAssertion>
        <L7p:SslAssertion/>
        <L7p:Include>
            <L7p:PolicyGuid stringValue="f0eb1f7b-392b-40a4-9f4f-46d00ffad3d3"/>
        </L7p:Include>
        <L7p:Include>
            <L7p:PolicyGuid stringValue="60cec430-0767-429c-8eff-62891c2eb343"/>
        </L7p:Include>
        <wsp:All wsp:Usage="Required">
            <L7p:SetVariable>
                <L7p:Base64Expression stringValue="JHtwYXJhbXN9"/>
                <L7p:VariableToSet stringValue="params"/>
            </L7p:SetVariable>
            <L7p:JdbcQuery>
                <L7p:AssertionFailureEnabled booleanValue="false"/>
                <L7p:ConnectionName stringValue="OAuth"/>
                <L7p:SqlQuery stringValueReference="inline"><![CDATA[select ock.client_key from oauth_client_key ock
                    where ock.client_key = ${request.http.parameter.client_key} and 1 < 2]]></L7p:SqlQuery>
            </L7p:JdbcQuery>
            <L7p:HttpRoutingAssertion>
                <L7p:ProtectedServiceUrl stringValue="${host_oauth_ovp_server}/oauth/validation/validate/v1/signature"/>
                <L7p:RequestMsgSrc stringValue="params"/>
            </L7p:HttpRoutingAssertion>
            <L7p:assertionComment>
                <L7p:Properties mapValue="included"/>
            </L7p:assertionComment>
        </wsp:All>
        <L7p:Include>
            <L7p:PolicyGuid stringValue="f0eb1f7b-392b-40a4-9f4f-46d00ffad3d3"/>
        </L7p:Include>
        <wsp:OneOrMore wsp:Usage="Required">
            <L7p:JdbcQuery>
                <L7p:ConnectionName stringValue="OAuth"/>
            </L7p:JdbcQuery>
            <L7p:JdbcQuery>
                <L7p:ConnectionName stringValue="Audit"/>
            </L7p:JdbcQuery>
        </wsp:OneOrMore>
        <L7p:HttpRoutingAssertion>
            <L7p:ProtectedServiceUrl stringValue="https://${host_oauth_tokenstore_server}"/>
        </L7p:HttpRoutingAssertion>
        <!-- routed as is -->
        <L7p:HttpRoutingAssertion>
            <L7p:ProtectedServiceUrl stringValue="${host_target}"/>
        </L7p:HttpRoutingAssertion>
    </wsp:All>
</wsp:Policy>
`
