package catalog

// DefaultStorefrontURL is where every non-copy action sends the shopper.
const DefaultStorefrontURL = "https://www.jdsports.ca"

type Tip struct {
	Icon  string
	Title string
	Body  string
}

// Page is the static copy around the coupon grid.
type Page struct {
	Title       string
	Description string
	Heading     string
	Subheading  string
	Updated     string
	Tips        []Tip
	Footer      string
	StoreName   string
}

func DefaultPage() Page {
	return Page{
		Title:       "JD Sports Canada - Best Discount Coupons",
		Description: "Find the best discount coupons and promo codes for JD Sports Canada",
		Heading:     "JD Sports Canada 🇨🇦",
		Subheading:  "Best Discount Coupons & Promo Codes",
		Updated:     "Updated: October 2025",
		Tips: []Tip{
			{Icon: "📱", Title: "Download the JD Sports App:", Body: "Get an extra 20% off automatically when shopping through the app."},
			{Icon: "🎓", Title: "Student Discount:", Body: "Students can save 15% on regular-priced items with SPC membership verification."},
			{Icon: "📧", Title: "Email Signup:", Body: "Sign up for texts and emails to get $10 off your first order over $100."},
			{Icon: "🚚", Title: "Free Shipping:", Body: "Orders over $99 qualify for free standard shipping."},
			{Icon: "🔄", Title: "Check Back Often:", Body: "JD Sports frequently updates their sales and promotions, especially during seasonal events."},
		},
		Footer:    "All coupon codes and deals are verified as of October 2025. Terms and conditions apply.",
		StoreName: "JD Sports Canada",
	}
}
