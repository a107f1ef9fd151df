package catalog

// DefaultVersion identifies the built-in flag list.
const DefaultVersion = "builtin-2023.1"

var defaultTerms = []Term{
	{"african", Substantive},
	{"armenian", Substantive},
	{" aryan", Substantive},
	{"caucasian", Substantive},
	{"cau-casian", Substantive},
	{"cauca-sian", Substantive},
	{"caucasion", Substantive},
	{"cau-casion", Substantive},
	{"cauca-sion", Substantive},
	{"caucausian", Substantive},
	{"chinese", Substantive},
	{"colored", Substantive},
	{"domestic servants", Substantive},
	{"death certificate", Exception},
	{"certificate of death", Exception},
	{"date of death", Exception},
	{"name of deceased", Exception},
	{"ethiopian", Substantive},
	{"hebrew", Substantive},
	{"hindu", Substantive},
	{" indian ", Substantive},
	{"irish", Substantive},
	{"italian", Substantive},
	{"japanese", Substantive},
	{" jew ", Substantive},
	{"jewish", Substantive},
	{" malay", Substantive},
	{"mexican", Substantive},
	{"mongolian", Substantive},
	{"moorish", Substantive},
	{"mulatto", Substantive},
	{"mulato", Substantive},
	{"nationality", Substantive},
	{" not white", Substantive},
	{"negro", Substantive},
	{"occupied by any", Substantive},
	{"persian", Substantive},
	{"person not of", Substantive},
	{"persons not of", Substantive},
	{" polish", Substantive},
	{"racial", Substantive},
	{"report of transfer", Exception},
	{"report of separation", Exception},
	{"transfer or discharge", Exception},
	{"blood group", Exception},
	{"semetic", Substantive},
	{"semitic", Substantive},
	{"simitic", Substantive},
	{"syrian", Substantive},
	{"turkish", Substantive},
	{"white race", Substantive},
}

// Default returns the built-in production catalog.
func Default() *Catalog {
	return MustNew(DefaultVersion, defaultTerms)
}
