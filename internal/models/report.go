package models

// Credit report statuses.
const (
	ReportActive   = "Active"
	ReportPending  = "Pending"
	ReportExpired  = "Expired"
	ReportDisputed = "Disputed"
)

// CreditReport is one generated credit report. Dates are kept as the
// backend formats them. ReportData is only populated by the
// single-report endpoint.
type CreditReport struct {
	ID            string            `json:"id"`
	UserID        string            `json:"userId"`
	UserName      string            `json:"userName"`
	PAN           string            `json:"pan"`
	CreditScore   int               `json:"creditScore"`
	Status        string            `json:"status"`
	GeneratedDate string            `json:"generatedDate,omitempty"`
	LastUpdated   string            `json:"lastUpdated,omitempty"`
	ReportData    *CreditReportData `json:"reportData,omitempty"`
}

// CreditReportData is the bureau detail behind a report.
type CreditReportData struct {
	PersonalInfo struct {
		Name        string `json:"name"`
		DateOfBirth string `json:"dateOfBirth"`
		PAN         string `json:"pan"`
		Address     string `json:"address"`
	} `json:"personalInfo"`
	CreditScore struct {
		Score   int            `json:"score"`
		Range   string         `json:"range"`
		Factors []CreditFactor `json:"factors"`
	} `json:"creditScore"`
	Accounts  []CreditAccount `json:"accounts"`
	Inquiries []Inquiry       `json:"inquiries"`
	Disputes  []Dispute       `json:"disputes"`
}

type CreditFactor struct {
	Name        string   `json:"name"`
	Impact      string   `json:"impact"`
	Description string   `json:"description"`
	Percentage  *float64 `json:"percentage,omitempty"`
}

type CreditAccount struct {
	ID                 string           `json:"id"`
	Type               string           `json:"type"`
	Lender             string           `json:"lender"`
	AccountNumber      string           `json:"accountNumber"`
	Status             string           `json:"status"`
	OpenedDate         string           `json:"openedDate"`
	ClosedDate         string           `json:"closedDate,omitempty"`
	CreditLimit        *float64         `json:"creditLimit,omitempty"`
	OutstandingBalance *float64         `json:"outstandingBalance,omitempty"`
	PaymentHistory     []PaymentHistory `json:"paymentHistory"`
}

type PaymentHistory struct {
	Month  string  `json:"month"`
	Status string  `json:"status"`
	Amount float64 `json:"amount"`
}

type Inquiry struct {
	ID      string `json:"id"`
	Date    string `json:"date"`
	Lender  string `json:"lender"`
	Type    string `json:"type"`
	Purpose string `json:"purpose"`
}

type Dispute struct {
	ID            string `json:"id"`
	AccountID     string `json:"accountId"`
	Reason        string `json:"reason"`
	Status        string `json:"status"`
	SubmittedDate string `json:"submittedDate"`
	ResolvedDate  string `json:"resolvedDate,omitempty"`
}

// ReportList is the payload of GET /reports. Items arrive under "data".
type ReportList struct {
	Reports    []CreditReport `json:"data"`
	Pagination Pagination     `json:"pagination"`
}

// GenerateReportRequest asks the bureau for a fresh report.
type GenerateReportRequest struct {
	UserID  string `json:"userId"`
	PAN     string `json:"pan"`
	Purpose string `json:"purpose,omitempty"`
}

// ReportStats are the report counters.
type ReportStats struct {
	Total        int     `json:"total"`
	Active       int     `json:"active"`
	Pending      int     `json:"pending"`
	Expired      int     `json:"expired"`
	Disputed     int     `json:"disputed"`
	AverageScore float64 `json:"averageScore"`
}

// ValidReportStatus reports whether s is one of the four report statuses.
func ValidReportStatus(s string) bool {
	switch s {
	case ReportActive, ReportPending, ReportExpired, ReportDisputed:
		return true
	}

	return false
}
