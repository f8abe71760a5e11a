package schema

// Kind drives how the record normalizer coerces a field's raw cell value.
type Kind int

const (
	KindText Kind = iota
	KindMoney
	KindDate
	KindIdentifier
)

// Field is one canonical column the pipelines address by name, never by
// source header text or position. Aliases are the header spellings seen in
// real recorder and appraisal-district exports.
type Field struct {
	Name     string
	Aliases  []string
	Kind     Kind
	Required bool
}

// RecorderFields is the canonical field set for county-recorder exports.
// Required fields are listed first: resolution runs in declaration order, so
// required fields win contested header matches.
func RecorderFields() []Field {
	return []Field{
		{
			Name:     "lender_name",
			Aliases:  []string{"lender", "beneficiary", "mortgagee", "grantee", "payee", "creditor"},
			Kind:     KindText,
			Required: true,
		},
		{
			Name:     "loan_amount",
			Aliases:  []string{"loan amount", "loan amt", "principal", "original principal", "amount", "loan value", "face amount"},
			Kind:     KindMoney,
			Required: true,
		},
		{
			Name:    "recording_date",
			Aliases: []string{"recording date", "record date", "date recorded", "filing date", "doc date"},
			Kind:    KindDate,
		},
		{
			Name:    "doc_type",
			Aliases: []string{"document type", "instrument type", "doc type", "instrument", "type"},
			Kind:    KindText,
		},
		{
			Name:    "borrower_name",
			Aliases: []string{"borrower", "grantor", "trustor", "mortgagor", "debtor", "obligor"},
			Kind:    KindText,
		},
		{
			Name:    "property_address",
			Aliases: []string{"property address", "situs address", "address", "property location", "situs"},
			Kind:    KindText,
		},
		{
			Name:    "property_city",
			Aliases: []string{"city", "property city", "situs city"},
			Kind:    KindText,
		},
		{
			Name:    "property_state",
			Aliases: []string{"state", "property state", "situs state"},
			Kind:    KindText,
		},
		{
			Name:    "property_zip",
			Aliases: []string{"zip", "zip code", "postal code", "property zip", "situs zip"},
			Kind:    KindText,
		},
		{
			Name:    "interest_rate",
			Aliases: []string{"interest rate", "rate", "apr", "interest"},
			Kind:    KindMoney,
		},
		{
			Name:    "maturity_date",
			Aliases: []string{"maturity date", "maturity", "due date", "payoff date"},
			Kind:    KindDate,
		},
		{
			Name:    "loan_term",
			Aliases: []string{"loan term", "term", "loan period", "months", "years"},
			Kind:    KindText,
		},
		{
			Name:    "apn",
			Aliases: []string{"apn", "parcel id", "account id", "parcel number", "assessor parcel number", "account number"},
			Kind:    KindIdentifier,
		},
		{
			Name:    "mailing_address",
			Aliases: []string{"mailing address", "mail address", "owner address", "mailing addr"},
			Kind:    KindText,
		},
		{
			Name:    "mailing_city",
			Aliases: []string{"mailing city", "mail city", "owner city"},
			Kind:    KindText,
		},
		{
			Name:    "mailing_state",
			Aliases: []string{"mailing state", "mail state", "owner state"},
			Kind:    KindText,
		},
		{
			Name:    "mailing_zip",
			Aliases: []string{"mailing zip", "mail zip", "owner zip", "mailing zip code"},
			Kind:    KindText,
		},
	}
}

// PropertyFields is the canonical field set for property-tax (appraisal
// district) exports.
func PropertyFields() []Field {
	return []Field{
		{
			Name:     "owner_name",
			Aliases:  []string{"owner", "owner name", "taxpayer", "taxpayer name", "py owner name"},
			Kind:     KindText,
			Required: true,
		},
		{
			Name:     "total_value",
			Aliases:  []string{"total value", "appraised value", "appraised val", "market value", "assessed value"},
			Kind:     KindMoney,
			Required: true,
		},
		{
			Name:    "account_id",
			Aliases: []string{"account id", "account number", "prop id", "parcel id", "apn", "parcel number"},
			Kind:    KindIdentifier,
		},
		{
			Name:    "situs_address",
			Aliases: []string{"situs address", "property address", "situs", "property location"},
			Kind:    KindText,
		},
		{
			Name:    "situs_city",
			Aliases: []string{"situs city", "property city"},
			Kind:    KindText,
		},
		{
			Name:    "situs_state",
			Aliases: []string{"situs state", "property state"},
			Kind:    KindText,
		},
		{
			Name:    "situs_zip",
			Aliases: []string{"situs zip", "property zip"},
			Kind:    KindText,
		},
		{
			Name:    "mailing_address",
			Aliases: []string{"mailing address", "owner address", "mail address", "addr line1"},
			Kind:    KindText,
		},
		{
			Name:    "mailing_city",
			Aliases: []string{"mailing city", "owner city", "mail city"},
			Kind:    KindText,
		},
		{
			Name:    "mailing_state",
			Aliases: []string{"mailing state", "owner state", "mail state"},
			Kind:    KindText,
		},
		{
			Name:    "mailing_zip",
			Aliases: []string{"mailing zip", "owner zip", "mail zip"},
			Kind:    KindText,
		},
		{
			Name:    "property_type",
			Aliases: []string{"property type", "prop type", "property class", "state use code"},
			Kind:    KindText,
		},
		{
			Name:    "land_value",
			Aliases: []string{"land value", "land val"},
			Kind:    KindMoney,
		},
		{
			Name:    "improvement_value",
			Aliases: []string{"improvement value", "imprv val", "improvement val"},
			Kind:    KindMoney,
		},
		{
			Name:    "assessed_year",
			Aliases: []string{"assessed year", "tax year", "appraisal year", "prop val yr"},
			Kind:    KindText,
		},
	}
}

// FieldByName returns the field definition for a canonical name.
func FieldByName(fields []Field, name string) (Field, bool) {
	for _, f := range fields {
		if f.Name == name {
			return f, true
		}
	}
	return Field{}, false
}

// RequiredNames lists the required canonical fields of a field set.
func RequiredNames(fields []Field) []string {
	var names []string
	for _, f := range fields {
		if f.Required {
			names = append(names, f.Name)
		}
	}
	return names
}
