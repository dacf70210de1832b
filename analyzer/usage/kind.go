package usage

// AccessKind distinguishes reads from writes of a shared-state property or
// request/response facet.
type AccessKind string

const (
	Read  AccessKind = "READ"
	Write AccessKind = "WRITE"
)

// Facet names the request or response surface a DataUsage touches.
type Facet string

const (
	FacetQuery           Facet = "query"
	FacetBody            Facet = "body"
	FacetPathParams      Facet = "params"
	FacetHeaders         Facet = "headers"
	FacetCookies         Facet = "cookies"
	FacetResponseHeaders Facet = "responseHeaders"
	FacetResponseCookies Facet = "responseCookies"
)

// DirectAccess is the sentinel property reported when the transaction bag is
// used as a whole object.
const DirectAccess = "(direct)"
