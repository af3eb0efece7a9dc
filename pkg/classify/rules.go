package classify

import "regexp"

// Rules holds the immutable lookup tables driving agency extraction, sector
// classification, relevance filtering and impact scoring. Built once at
// startup; never mutated afterwards.
type Rules struct {
	sectors        []sectorRule
	agencies       []agencyRule
	ministerRoles  []roleRule
	inferred       []inferredRule
	agencySector   map[string]string
	broadAgencies  map[string]bool
	strongSignals  []string
	contextWords   []string
	impactSignals  []string
	financialNoise []string
	foreignContext []string
	crossBorder    []string
	impactTiers    impactTiers
	ministerRe     *regexp.Regexp
}

type sectorRule struct {
	name     string
	keywords []*regexp.Regexp
}

type agencyRule struct {
	code      string
	acronymRe *regexp.Regexp   // case-sensitive whole-word
	aliases   []*regexp.Regexp // full names, case-insensitive whole-word
}

type roleRule struct {
	role   string // substring matched against the captured minister role
	agency string
}

type inferredRule struct {
	agency   string
	keywords []*regexp.Regexp
}

type impactTiers struct {
	high   []*regexp.Regexp
	medium []*regexp.Regexp
	low    []*regexp.Regexp
}

// wordRe compiles a case-sensitive whole-word matcher for a phrase
func wordRe(phrase string) *regexp.Regexp {
	return regexp.MustCompile(`\b` + regexp.QuoteMeta(phrase) + `\b`)
}

// iwordRe compiles a case-insensitive whole-word matcher for a phrase
func iwordRe(phrase string) *regexp.Regexp {
	return regexp.MustCompile(`(?i)\b` + regexp.QuoteMeta(phrase) + `\b`)
}

func wordRes(phrases []string) []*regexp.Regexp {
	res := make([]*regexp.Regexp, len(phrases))
	for i, p := range phrases {
		res[i] = wordRe(p)
	}
	return res
}

// DefaultRules builds the rule set for Singapore regulatory news
func DefaultRules() *Rules {
	r := &Rules{
		agencySector:  agencySectorDefaults(),
		broadAgencies: map[string]bool{},
		ministerRe:    regexp.MustCompile(`(?i)Minister (?:of State |for |of )?([\w\s&]+)`),
	}

	for _, a := range broadAgencyList {
		r.broadAgencies[a] = true
	}

	for _, s := range sectorOrder {
		r.sectors = append(r.sectors, sectorRule{name: s, keywords: wordRes(sectorKeywords[s])})
	}

	for _, a := range agencyList {
		rule := agencyRule{code: a.code, acronymRe: wordRe(a.code)}
		for _, alias := range a.aliases {
			rule.aliases = append(rule.aliases, iwordRe(alias))
		}
		r.agencies = append(r.agencies, rule)
	}

	r.ministerRoles = ministerRoleList

	for _, inf := range inferredAgencyList {
		r.inferred = append(r.inferred, inferredRule{agency: inf.agency, keywords: wordRes(inf.keywords)})
	}

	r.strongSignals = strongRegulatorySignals
	r.contextWords = jurisdictionContext
	r.impactSignals = businessImpactSignals
	r.financialNoise = financialNoiseWords
	r.foreignContext = foreignContextWords
	r.crossBorder = crossBorderQualifiers

	r.impactTiers = impactTiers{
		high:   wordRes(impactHighKeywords),
		medium: wordRes(impactMediumKeywords),
		low:    wordRes(impactLowKeywords),
	}

	return r
}

// sectorOrder fixes the enumeration order used for keyword-score tie-breaks
var sectorOrder = []string{
	"General Business", "Energy & Chemicals", "Precision Engineering", "Electronics",
	"Aerospace", "Marine & Offshore", "Logistics", "Air Transport", "Land Transport",
	"Sea Transport", "ICT", "Media", "Food Services", "Retail", "Hotels", "Real Estate",
	"Security", "Environmental Services", "Wholesale Trade", "Healthcare", "Education",
	"Professional Services", "Financial Services", "Construction",
}

var sectorKeywords = map[string][]string{
	"General Business":       {"business", "sbf", "pep", "pro-enterprise", "enterprise", "sme", "startup", "economy", "economic", "market outlook", "biz", "commerce", "chamber"},
	"Energy & Chemicals":     {"energy", "oil", "gas", "chemical", "petroleum", "power", "solar", "green", "sustainability"},
	"Precision Engineering":  {"machinery", "precision", "semiconductor", "equipment"},
	"Electronics":            {"electronics", "chip", "semiconductor", "wafer"},
	"Aerospace":              {"aerospace", "aviation", "airline", "aircraft", "sia", "changi"},
	"Marine & Offshore":      {"marine", "offshore", "shipyard", "vessel", "keppel", "sembcorp"},
	"Logistics":              {"logistics", "supply chain", "cargo", "freight", "warehouse"},
	"Air Transport":          {"air transport", "airport", "flight", "terminal", "aviation", "air travel", "airline"},
	"Land Transport":         {"land transport", "mrt", "bus", "rail", "lta", "transport", "self-driving", "autonomous", "shuttle", "chauffeur", "taxi", "private hire", "ride-hailing", "cross-border", "checkpoint", "causeway"},
	"Sea Transport":          {"sea transport", "port", "maritime", "shipping", "mpa", "ferry"},
	"ICT":                    {"ict", "tech", "technology", "digital", "cyber", "software", "ai", "data", "internet", "smart nation"},
	"Media":                  {"media", "film", "broadcast", "content", "advertising"},
	"Food Services":          {"food", "dining", "restaurant", "hawker", "f&b", "halal"},
	"Retail":                 {"retail", "shopping", "mall", "ecommerce", "consumer"},
	"Hotels":                 {"hotel", "hospitality", "tourism", "staycation"},
	"Real Estate":            {"real estate", "property", "housing", "hdb", "ura", "condo", "land", "redas", "developer", "en bloc", "collective sale", "show-flat"},
	"Security":               {"security", "police", "surveillance", "defense", "mha"},
	"Environmental Services": {"environment", "waste", "cleaning", "recycle", "nea", "water", "pub", "mse"},
	"Wholesale Trade":        {"wholesale", "trade", "import", "export", "distributor"},
	"Healthcare":             {"healthcare", "health", "medical", "hospital", "clinic", "moh", "virus", "disease"},
	"Education":              {"education", "school", "university", "moe", "student", "teacher", "academic"},
	"Professional Services":  {"professional", "consulting", "legal", "accounting", "audit", "law", "advisory"},
	"Financial Services":     {"financial", "finance", "bank", "mas", "insurance", "fintech", "investment", "money", "monetary", "retail investor", "shareholder", "governance standard"},
	"Construction":           {"construction", "build", "bca", "infrastructure", "contractor", "built environment"},
}

type agencyDef struct {
	code    string
	aliases []string
}

var agencyList = []agencyDef{
	{"ACRA", []string{"Accounting and Corporate Regulatory Authority"}},
	{"A*STAR", []string{"Agency for Science, Technology and Research"}},
	{"BCA", []string{"Building and Construction Authority"}},
	{"CPFB", []string{"CPF", "Central Provident Fund"}},
	{"CAAS", []string{"Civil Aviation Authority"}},
	{"EDB", []string{"Economic Development Board"}},
	{"EMA", []string{"Energy Market Authority"}},
	{"ENTERPRISESG", []string{"Enterprise Singapore", "EnterpriseSG"}},
	{"HSA", []string{"Health Sciences Authority"}},
	{"HDB", []string{"Housing & Development Board", "Housing and Development Board"}},
	{"IMDA", []string{"Info-communications Media Development Authority"}},
	{"IRAS", []string{"Inland Revenue Authority"}},
	{"LTA", []string{"Land Transport Authority"}},
	{"MAS", []string{"Monetary Authority", "Central Bank"}},
	{"NEA", []string{"National Environment Agency"}},
	{"MOH", []string{"Ministry of Health"}},
	{"MOM", []string{"Ministry of Manpower"}},
	{"MTI", []string{"Ministry of Trade"}},
	{"MOF", []string{"Ministry of Finance"}},
	{"URA", []string{"Urban Redevelopment Authority"}},
	{"PUB", []string{"Public Utilities Board", "National Water Agency"}},
	{"SFA", []string{"Singapore Food Agency", "Food Agency"}},
	{"SLA", []string{"Singapore Land Authority"}},
	{"STB", []string{"Singapore Tourism Board"}},
	{"WSG", []string{"Workforce Singapore"}},
	{"SSG", []string{"SkillsFuture"}},
	{"MinLaw", []string{"Ministry of Law"}},
	{"MOT", []string{"Ministry of Transport"}},
	{"MUIS", []string{"Majlis Ugama Islam Singapura", "Islamic Religious Council"}},
	{"SBF", []string{"Singapore Business Federation"}},
	{"Customs", []string{"Singapore Customs"}},
	{"NRF", []string{"National Research Foundation"}},
	{"MDDI", []string{"Ministry of Digital Development and Information", "MCI"}},
	{"MSE", []string{"Ministry of Sustainability and the Environment", "MEWR"}},
	{"MND", []string{"Ministry of National Development"}},
}

// ministerRoleList maps the captured "Minister for <role>" text to an agency.
// Order is fixed to keep extraction deterministic.
var ministerRoleList = []roleRule{
	{"Trade", "MTI"}, {"Industry", "MTI"},
	{"National Development", "MND"},
	{"Manpower", "MOM"},
	{"Transport", "MOT"},
	{"Sustainability", "MSE"}, {"Environment", "MSE"},
	{"Health", "MOH"},
	{"Home Affairs", "MHA"}, {"Law", "MinLaw"},
	{"Communication", "MDDI"}, {"Information", "MDDI"}, {"Digital", "MDDI"},
	{"Finance", "MOF"},
	{"Culture", "MCCY"}, {"Community", "MCCY"}, {"Youth", "MCCY"},
	{"Prime Minister", "PMO"},
	{"Research", "NRF"}, {"Customs", "Customs"},
}

type inferredDef struct {
	agency   string
	keywords []string
}

// inferredAgencyList covers articles that never name the agency explicitly
// but whose topic implies it
var inferredAgencyList = []inferredDef{
	{"LTA", []string{"self-driving", "autonomous", "shuttle", "erp", "coe", "taxi", "private hire", "ride-hailing"}},
	{"MAS", []string{"retail investor", "shareholder", "listing rule", "governance standard", "crypto", "monetary", "retail investors", "shareholders", "governance standards"}},
	{"MinLaw", []string{"en bloc", "collective sale", "land title", "strata"}},
	{"MOT", []string{"cross-border transport", "rts link", "hsr", "vtl", "cross-border taxi", "checkpoint"}},
	{"SFA", []string{"food safety", "food recall"}},
	{"MUIS", []string{"halal certificate", "halal certificates", "halal certification", "halal logo"}},
	{"URA", []string{"show-flat", "developer"}},
	{"SLA", []string{"show-flat", "site sourcing"}},
}

func agencySectorDefaults() map[string]string {
	return map[string]string{
		"BCA": "Construction",
		"URA": "Real Estate", "HDB": "Real Estate", "SLA": "Real Estate", "CEA": "Real Estate",
		"LTA": "Land Transport",
		"MPA": "Sea Transport",
		"CAAS": "Air Transport",
		"EMA":  "Energy & Chemicals",
		"IMDA": "ICT", "CSA": "ICT", "GovTech": "ICT", "MDDI": "ICT",
		"MOH": "Healthcare", "HSA": "Healthcare",
		"EDB": "Financial Services", "MAS": "Financial Services",
		"ACRA": "Professional Services", "IRAS": "Professional Services", "MOM": "Professional Services",
		"STB":  "Hotels",
		"SFA":  "Food Services",
		"MUIS": "Food Services",
		"NEA":  "Environmental Services", "PUB": "Environmental Services", "MSE": "Environmental Services",
		"ESG": "General Business", "ENTERPRISESG": "General Business", "MTI": "General Business",
		"SBF": "General Business", "NRF": "General Business",
		"MND":     "Real Estate",
		"MOT":     "Land Transport",
		"Customs": "Wholesale Trade",
		"MHA":     "Security",
		"MCCY":    "Media",
		"PMO":     "General",
		"MinLaw":  "Real Estate",
	}
}

// broadAgencyList names agencies whose mandate spans many sectors, where
// keyword evidence should win over the agency's default sector
var broadAgencyList = []string{"MTI", "MOM", "MOT", "MSE", "PMO", "ESG", "ENTERPRISESG", "SSG", "WSG"}

var strongRegulatorySignals = []string{
	"bill passed", "act passed", "new law", "new rule", "regulatory framework",
	"compliance", "mandatory", "legislative", "parliament", "amendment",
	"grant", "subsidy", "levy", "tax", "transformation map", "roadmap",
	"budget", "minister", "circular", "guideline", "standard", "certification",
}

var jurisdictionContext = []string{
	"singapore", "sg", "local", "islandwide", "nation", "state", "republic",
	"lion city", "merlion", "changi", "jurong", "tuas", "punggol", "tengah",
	"woodlands", "yishun", "tampines", "sengkang",
}

var businessImpactSignals = []string{
	"businesses", "smes", "employers", "industry", "sector", "deadline",
	"eligibility", "criteria", "adopt", "roll out", "launch", "apply",
}

var financialNoiseWords = []string{
	"market close", "share price", "stock", "equity", "ipo", "listing",
	"dividend", "earnings", "profit", "revenue", "quarterly", "analyst",
	"buy rating", "sell rating", "target price", "broker", "investor",
	"wealth", "billionaire", "rich list", "ranking", "survey", "marathon",
	"race", "sport", "football", "sanction", "iran", "russia", "war",
}

var foreignContextWords = []string{
	"united states", "usa", "video", "london", "uk", "china", "japan",
	"malaysia", "thailand", "vietnam", "australia", "hong kong",
}

var crossBorderQualifiers = []string{"cross-border", "trade", "export", "import", "agreement"}

var impactHighKeywords = []string{
	"act", "bill", "law", "penalty", "fine", "charged", "revoked", "banned", "jail",
	"sentence", "convicted", "obligation", "compliance", "mandatory", "enforcement",
	"raid", "seize", "court", "prosecute", "license revoked", "suspension", "stop order",
	"certification", "certificate", "certificates", "licence", "license", "licences", "licenses", "permit", "permits",
	"quota", "levy", "hours", "curfew", "mask", "masks", "vaccination", "testing", "safe management",
	"site selection", "zoning", "redevelopment", "digitalisation", "digitisation",
	"lifted", "relaxed", "eased", "tightened", "extended", "expanded", "restricted",
}

var impactMediumKeywords = []string{
	"consultation", "proposal", "guideline", "framework", "standard", "review",
	"mou", "agreement", "initiative", "grant", "subsidy", "support scheme",
	"advisory", "circular", "direction", "reminder", "speech", "parliament",
	"dialogue", "forum", "visit", "roadmap", "blueprint",
}

var impactLowKeywords = []string{
	"dinner", "award", "appreciation", "festival", "charity",
	"donation", "community", "celebration", "anniversary", "closure",
	"maintenance", "service disruption",
}
