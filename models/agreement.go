package models

// AgreementSet tracks the consent checkboxes on the order sheet.
// All is derived: it is true exactly when the three sub-flags are.
type AgreementSet struct {
	All          bool `json:"all"`
	PersonalInfo bool `json:"personal_info"`
	ThirdParty   bool `json:"third_party"`
	Payment      bool `json:"payment"`
}

// Agreement names the individual consent flags.
type Agreement string

const (
	AgreementAll          Agreement = "all"
	AgreementPersonalInfo Agreement = "personal_info"
	AgreementThirdParty   Agreement = "third_party"
	AgreementPayment      Agreement = "payment"
)

// Toggle flips one flag. Toggling All forces every sub-flag to the new
// value; toggling a sub-flag recomputes All. Unknown names are ignored.
func (a *AgreementSet) Toggle(name Agreement) {
	switch name {
	case AgreementAll:
		v := !a.All
		a.All = v
		a.PersonalInfo = v
		a.ThirdParty = v
		a.Payment = v
		return
	case AgreementPersonalInfo:
		a.PersonalInfo = !a.PersonalInfo
	case AgreementThirdParty:
		a.ThirdParty = !a.ThirdParty
	case AgreementPayment:
		a.Payment = !a.Payment
	default:
		return
	}
	a.All = a.PersonalInfo && a.ThirdParty && a.Payment
}

// Set assigns one flag to an explicit value, with the same derivation
// rules as Toggle.
func (a *AgreementSet) Set(name Agreement, value bool) {
	switch name {
	case AgreementAll:
		a.All = value
		a.PersonalInfo = value
		a.ThirdParty = value
		a.Payment = value
		return
	case AgreementPersonalInfo:
		a.PersonalInfo = value
	case AgreementThirdParty:
		a.ThirdParty = value
	case AgreementPayment:
		a.Payment = value
	default:
		return
	}
	a.All = a.PersonalInfo && a.ThirdParty && a.Payment
}
