package ui

// Page identifies one of the app's screens; templates use it to mark
// the active nav item.
type Page string

const (
	PageDashboard      Page = "dashboard"
	PageTransactions   Page = "transactions"
	PageAddTransaction Page = "add-transaction"
	PageReports        Page = "reports"
	PageActivity       Page = "activity-logs"
	PageProfile        Page = "profile"
)

// Title returns the heading shown for the page.
func (p Page) Title() string {
	switch p {
	case PageDashboard:
		return "Dashboard"
	case PageTransactions:
		return "Transaksi"
	case PageAddTransaction:
		return "Tambah Transaksi"
	case PageReports:
		return "Reports"
	case PageActivity:
		return "Activity Logs"
	case PageProfile:
		return "Profile"
	default:
		return "MoneyMate"
	}
}

// Template returns the template file rendering the page.
func (p Page) Template() string {
	switch p {
	case PageDashboard:
		return "dashboard.html"
	case PageTransactions:
		return "transactions.html"
	case PageAddTransaction:
		return "add_transaction.html"
	case PageReports:
		return "reports.html"
	case PageActivity:
		return "activity.html"
	case PageProfile:
		return "profile.html"
	default:
		return ""
	}
}

// Path returns the page's URL path.
func (p Page) Path() string {
	return "/" + string(p)
}

// NavPages lists the screens in nav order.
var NavPages = []Page{
	PageDashboard,
	PageTransactions,
	PageAddTransaction,
	PageReports,
	PageActivity,
	PageProfile,
}
