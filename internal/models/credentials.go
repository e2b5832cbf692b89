// Package models holds the connection credential and profile value objects
// plus the question sequences that fill them in interactively.
package models

import "strings"

// AuthenticationType identifies how a connection authenticates.
type AuthenticationType string

const (
	// AuthSQLLogin is username/password authentication.
	AuthSQLLogin AuthenticationType = "SqlLogin"
	// AuthIntegrated uses the OS identity of the calling process.
	AuthIntegrated AuthenticationType = "Integrated"
	// AuthAzureMFA is reserved for Active Directory support.
	AuthAzureMFA AuthenticationType = "AzureMFA"
)

// ConnectionCredentials holds every field needed to open a database
// connection. Fields are filled by direct assignment or by the question
// sequence in questions.go. The zero value is a valid empty credential.
//
// When ConnectionString is non-empty it supersedes the discrete host/port
// fields at use time; both forms may be populated.
type ConnectionCredentials struct {
	Host               string             `mapstructure:"host" yaml:"host,omitempty" json:"host,omitempty"`
	HostAddr           string             `mapstructure:"hostaddr" yaml:"hostaddr,omitempty" json:"hostaddr,omitempty"`
	Port               int                `mapstructure:"port" yaml:"port,omitempty" json:"port,omitempty"`
	DBName             string             `mapstructure:"dbname" yaml:"dbname,omitempty" json:"dbname,omitempty"`
	User               string             `mapstructure:"user" yaml:"user,omitempty" json:"user,omitempty"`
	Password           string             `mapstructure:"password" yaml:"password,omitempty" json:"password,omitempty"`
	AuthenticationType AuthenticationType `mapstructure:"authenticationType" yaml:"authenticationType,omitempty" json:"authenticationType,omitempty"`
	ConnectionString   string             `mapstructure:"connectionString" yaml:"connectionString,omitempty" json:"connectionString,omitempty"`

	ConnectTimeout  int    `mapstructure:"connectTimeout" yaml:"connectTimeout,omitempty" json:"connectTimeout,omitempty"`
	ClientEncoding  string `mapstructure:"clientEncoding" yaml:"clientEncoding,omitempty" json:"clientEncoding,omitempty"`
	Options         string `mapstructure:"options" yaml:"options,omitempty" json:"options,omitempty"`
	ApplicationName string `mapstructure:"applicationName" yaml:"applicationName,omitempty" json:"applicationName,omitempty"`

	SSLMode        string `mapstructure:"sslmode" yaml:"sslmode,omitempty" json:"sslmode,omitempty"`
	SSLCompression bool   `mapstructure:"sslcompression" yaml:"sslcompression,omitempty" json:"sslcompression,omitempty"`
	SSLCert        string `mapstructure:"sslcert" yaml:"sslcert,omitempty" json:"sslcert,omitempty"`
	SSLKey         string `mapstructure:"sslkey" yaml:"sslkey,omitempty" json:"sslkey,omitempty"`
	SSLRootCert    string `mapstructure:"sslrootcert" yaml:"sslrootcert,omitempty" json:"sslrootcert,omitempty"`
	SSLCRL         string `mapstructure:"sslcrl" yaml:"sslcrl,omitempty" json:"sslcrl,omitempty"`
	RequirePeer    string `mapstructure:"requirepeer" yaml:"requirepeer,omitempty" json:"requirepeer,omitempty"`
	Service        string `mapstructure:"service" yaml:"service,omitempty" json:"service,omitempty"`

	Pooling     bool `mapstructure:"pooling" yaml:"pooling,omitempty" json:"pooling,omitempty"`
	MaxPoolSize int  `mapstructure:"maxPoolSize" yaml:"maxPoolSize,omitempty" json:"maxPoolSize,omitempty"`
	MinPoolSize int  `mapstructure:"minPoolSize" yaml:"minPoolSize,omitempty" json:"minPoolSize,omitempty"`
}

// ConnectionDetails is the flat key/value form of credentials consumed by the
// transport layer. It is recomputed on demand and never mutated in place by
// the credential owner.
type ConnectionDetails struct {
	Options map[string]any `json:"options"`
}

// CreateConnectionDetails converts credentials into the options mapping the
// tools service expects. Absent fields simply produce absent entries. A
// non-empty ConnectionString passes through under "connectionString";
// consumers treat it as authoritative over the discrete fields.
//
// If Port is set and Host does not already encode a port in "host,port" form,
// the port is emitted as its own option; a comma in Host means the host
// string is authoritative for the port.
func CreateConnectionDetails(credentials *ConnectionCredentials) ConnectionDetails {
	details := ConnectionDetails{Options: make(map[string]any)}

	setString := func(key, value string) {
		if value != "" {
			details.Options[key] = value
		}
	}
	setInt := func(key string, value int) {
		if value != 0 {
			details.Options[key] = value
		}
	}

	setString("connectionString", credentials.ConnectionString)
	setString("host", credentials.Host)
	if credentials.Port != 0 && !hostEncodesPort(credentials.Host) {
		details.Options["port"] = credentials.Port
	}
	setString("dbname", credentials.DBName)
	setString("user", credentials.User)
	setString("password", credentials.Password)
	setString("hostaddr", credentials.HostAddr)
	setInt("connectTimeout", credentials.ConnectTimeout)
	setString("clientEncoding", credentials.ClientEncoding)
	setString("options", credentials.Options)
	setString("applicationName", credentials.ApplicationName)
	setString("sslmode", credentials.SSLMode)
	if credentials.SSLCompression {
		details.Options["sslcompression"] = true
	}
	setString("sslcert", credentials.SSLCert)
	setString("sslkey", credentials.SSLKey)
	setString("sslrootcert", credentials.SSLRootCert)
	setString("sslcrl", credentials.SSLCRL)
	setString("requirepeer", credentials.RequirePeer)
	setString("service", credentials.Service)

	return details
}

// hostEncodesPort reports whether the host string is already in the combined
// "host,port" form.
func hostEncodesPort(host string) bool {
	return strings.Contains(host, ",")
}

// IsPasswordBasedCredential reports whether the credentials authenticate with
// a password. An unset authentication type defaults to SQL login.
func IsPasswordBasedCredential(credentials *ConnectionCredentials) bool {
	authType := credentials.AuthenticationType
	if authType == "" {
		authType = AuthSQLLogin
	}
	return authType == AuthSQLLogin
}

// AuthenticationTypeChoices returns the selectable authentication types.
// Azure MFA is excluded until Active Directory support lands.
func AuthenticationTypeChoices() []AuthenticationType {
	return []AuthenticationType{AuthSQLLogin, AuthIntegrated}
}
