package entities

// CredentialSheet is a rendered printable document of credentials.
type CredentialSheet struct {
	Filename    string
	ContentType string
	Data        []byte
	Count       int
}
