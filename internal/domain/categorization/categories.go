// Package categorization assigns expense categories to transaction
// descriptions. The category set is a fixed enumeration; assignment runs a
// short chain of vendor-specific overrides first, then an ordered keyword
// table where the first matching category wins. Categorize is a pure
// function of its inputs.
package categorization

// Category is one member of the fixed category enumeration.
type Category string

const (
	Uncategorized        Category = "Uncategorized"
	Processing           Category = "Processing"
	BankFees             Category = "Bank Fees"
	Advertisement        Category = "Advertisement"
	Marketing            Category = "Marketing"
	RepairsMaintenance   Category = "Repairs and Maintenance"
	EVGas                Category = "EV/Gas"
	Supplies             Category = "Supplies"
	Software             Category = "Software"
	Meals                Category = "Meals 50%"
	Shipping             Category = "Shipping"
	Travel               Category = "Travel"
	Utilities            Category = "Utilities"
	OfficeRent           Category = "Office Rent"
	ProfessionalServices Category = "Professional Services"
	Equipment            Category = "Equipment"
	Sales                Category = "Sales"
	Insurance            Category = "Insurance"
	Other                Category = "Other"
)

// categories lists the enumeration in its canonical order.
var categories = []Category{
	Uncategorized,
	Processing,
	BankFees,
	Advertisement,
	Marketing,
	RepairsMaintenance,
	EVGas,
	Supplies,
	Software,
	Meals,
	Shipping,
	Travel,
	Utilities,
	OfficeRent,
	ProfessionalServices,
	Equipment,
	Sales,
	Insurance,
	Other,
}

var categorySet = func() map[Category]struct{} {
	set := make(map[Category]struct{}, len(categories))
	for _, c := range categories {
		set[c] = struct{}{}
	}
	return set
}()

// All returns the enumeration in canonical order. Callers get a fresh
// slice; the enumeration itself is immutable.
func All() []Category {
	out := make([]Category, len(categories))
	copy(out, categories)
	return out
}

// Valid reports whether name is a member of the enumeration.
func Valid(name string) bool {
	_, ok := categorySet[Category(name)]
	return ok
}

func (c Category) String() string {
	return string(c)
}
