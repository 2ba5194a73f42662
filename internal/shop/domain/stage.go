package domain

// Stage is the registration-completeness state that gates every protected
// route. It is always derived from the stored Identity fields, never cached,
// so a partially-failed write can never strand the gate in a state that
// disagrees with the record.
type Stage int

const (
	StageUnauthenticated Stage = iota
	StageBasicIncomplete
	StageBasicComplete
	StageSellerIncomplete
	StageSellerComplete
)

func (s Stage) String() string {
	switch s {
	case StageUnauthenticated:
		return "unauthenticated"
	case StageBasicIncomplete:
		return "basic_incomplete"
	case StageBasicComplete:
		return "basic_complete"
	case StageSellerIncomplete:
		return "seller_incomplete"
	case StageSellerComplete:
		return "seller_complete"
	default:
		return "unknown"
	}
}

// StageOf derives the registration stage from an Identity record. This is
// the single source of truth for gate decisions.
//
// A seller who later flips IsSeller back to false is demoted to
// StageBasicComplete even if a seller profile is still on record; the seller
// data itself is retained.
func StageOf(i Identity) Stage {
	if i.ID == "" {
		return StageUnauthenticated
	}
	if i.Profile.FirstName == "" {
		return StageBasicIncomplete
	}
	if !i.WantsToSell() {
		return StageBasicComplete
	}
	if i.SellerProfile == nil || i.SellerProfile.OrganisationName == "" {
		return StageSellerIncomplete
	}
	return StageSellerComplete
}
