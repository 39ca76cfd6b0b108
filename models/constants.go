package models

// ✅ Key prefixes
const (
	PrefixUser     = "USER#"
	PrefixUsername = "USERNAME#"
	PrefixOrg      = "ORG#"
	PrefixCharity  = "CHARITY#"
	PrefixMetadata = "METADATA#"
	PrefixConvo    = "CONVO#"
	PrefixMessage  = "MSG#"
)

// KeySeparator joins the parts of composite key segments.
const KeySeparator = "#"

// ✅ Group prefixes used in membership sort keys (without the trailing '#')
const (
	GroupPrefixOrg     = "ORG"
	GroupPrefixCharity = "CHARITY"
)

// ✅ Category listing partitions (GSI2PK)
const (
	CategoryOrganizations = "ORGANIZATIONS"
	CategoryCharities     = "CHARITIES"
)

// ✅ Message content types
const (
	ContentTypeText  = "text"
	ContentTypeImage = "image"
)

// ✅ Conversation preview
const (
	PhotoPreviewIcon    = "📷"
	PhotoPreviewDefault = "📷 Photo"
	UnknownUsername     = "Unknown User"
)

// ✅ Counter attributes
const (
	AttrTotalSignups        = "totalSignups"
	AttrTotalCustomCountSum = "totalCustomCountSum"
	AttrCustomCounter       = "customCounter"
)

// TimestampLayout is the ISO-8601 UTC layout with millisecond precision used
// for createdAt, joinedAt and message sort keys.
const TimestampLayout = "2006-01-02T15:04:05.000Z"
