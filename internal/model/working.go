package model

// Visibility mirrors the host's member accessibility, ordered from least to
// most visible so comparisons against the exposure threshold work.
type Visibility int

const (
	VisibilityNone     Visibility = iota // accessor or member does not exist
	VisibilityPrivate                    // private, internal, private protected
	VisibilityProtected                  // protected, protected internal
	VisibilityPublic
)

// Exposed reports whether the visibility reaches the generated extern.
func (v Visibility) Exposed() bool { return v >= VisibilityProtected }

func (v Visibility) String() string {
	switch v {
	case VisibilityPrivate:
		return "private"
	case VisibilityProtected:
		return "protected"
	case VisibilityPublic:
		return "public"
	default:
		return "none"
	}
}

// ParseVisibility accepts the spellings used by catalog files. Unknown
// spellings are treated as private.
func ParseVisibility(s string) Visibility {
	switch s {
	case "public", "Public":
		return VisibilityPublic
	case "protected", "Protected", "protected internal", "ProtectedInternal", "family", "Family", "FamORAssem":
		return VisibilityProtected
	case "", "none", "None":
		return VisibilityNone
	default:
		return VisibilityPrivate
	}
}

// AccessMode is the property accessor shape emitted for a property.
type AccessMode int

const (
	AccessDefault   AccessMode = iota // plain field-like var
	AccessReadWrite                   // (get, set)
	AccessReadOnly                    // (get, never)
	AccessWriteOnly                   // (never, set)
)
