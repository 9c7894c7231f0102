package types

// ErrorKind classifies a failed call so callers can branch on a tag instead of
// matching message text.
type ErrorKind int

const (
	KindUnknown ErrorKind = iota
	KindForbidden
	KindUnauthenticated
	KindNotFound
	KindValidation
	KindAddressRequired
	KindNotVerified
	KindNotApproved
	KindServer
	KindNetwork
)

func (k ErrorKind) String() string {
	switch k {
	case KindForbidden:
		return "forbidden"
	case KindUnauthenticated:
		return "unauthenticated"
	case KindNotFound:
		return "not_found"
	case KindValidation:
		return "validation"
	case KindAddressRequired:
		return "address_required"
	case KindNotVerified:
		return "not_verified"
	case KindNotApproved:
		return "not_approved"
	case KindServer:
		return "server"
	case KindNetwork:
		return "network"
	default:
		return "unknown"
	}
}

// Structured error codes carried in the "code" field of error bodies.
const (
	CodeAddressRequired = "ADDRESS_REQUIRED"
	CodeNotVerified     = "ACCOUNT_NOT_VERIFIED"
	CodeNotApproved     = "SELLER_NOT_APPROVED"
	CodeForbidden       = "FORBIDDEN"
	CodeUnauthenticated = "UNAUTHENTICATED"
	CodeNotFound        = "NOT_FOUND"
	CodeValidation      = "VALIDATION_FAILED"
)

// ErrorResponse is the error body the backend sends. Detail is usually a
// string; validation failures send a list of {loc, msg} objects.
type ErrorResponse struct {
	Detail any    `json:"detail"`
	Code   string `json:"code,omitempty"`
}
