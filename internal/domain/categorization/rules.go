package categorization

// KeywordRule binds a category to the lowercase substrings that select it.
type KeywordRule struct {
	Category Category
	Keywords []string
}

// KeywordRules is the generic categorization table, evaluated top-down:
// the first category any of whose keywords appears in the lowercased
// description wins, so the order here is the tie-break priority. Matching
// is substring, not whole-word ("ad" inside a longer word counts);
// tightening it would reclassify existing statements.
var KeywordRules = []KeywordRule{
	{Processing, []string{"square", "stripe", "paypal"}},
	{BankFees, []string{"fee", "charge", "interest", "overdraft"}},
	{Advertisement, []string{"photo", "photohub", "printing", "ad", "advertisement"}},
	{Marketing, []string{"facebook", "instagram", "google ads", "advertising", "marketing"}},
	{RepairsMaintenance, []string{"home depot", "lowe", "advance auto", "autozone", "autopart", "repair", "maintenance"}},
	{EVGas, []string{"supercharging", "super charging", "gas station", "fuel"}},
	{Supplies, []string{"office depot", "staples", "ikea", "amazon", "supplies", "paper", "ink"}},
	{Software, []string{"google svcs", "google", "microsoft", "adobe", "slack", "zoom", "dropbox", "aws", "github", "canva", "expens"}},
	{Meals, []string{"mcdonald", "starbucks", "chick-fil-a", "chipotle", "wendy", "burger king", "dunkin", "panera", "subway", "domino"}},
	{Shipping, []string{"ups store", "fedex", "usps", "shipping"}},
	{Travel, []string{"uber", "lyft", "hotel", "airline", "parking"}},
	{Utilities, []string{"bge", "balt gas", "gas and electric", "utility", "utilities", "electric", "water", "verizon", "comcast"}},
	{ProfessionalServices, []string{"legal", "accounting", "consulting", "lawyer", "cpa"}},
}
