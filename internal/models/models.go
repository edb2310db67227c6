package models

import "github.com/shopspring/decimal"

// The remote API expects prices and percentages as JSON numbers.
func init() {
	decimal.MarshalJSONWithoutQuotes = true
}

// UserProfile is the logged-in staff member returned by the session probe
type UserProfile struct {
	Email             string `json:"email"`
	FirstName         string `json:"firstName,omitempty"`
	LastName          string `json:"lastName,omitempty"`
	PhoneNumber       string `json:"phoneNumber,omitempty"`
	ProfilePictureURL string `json:"profilePictureUrl,omitempty"`
	FullName          string `json:"fullName"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type SignupRequest struct {
	Email       string `json:"email" form:"email" binding:"required,email"`
	Password    string `json:"password" form:"password" binding:"required"`
	FirstName   string `json:"firstName,omitempty" form:"firstName"`
	LastName    string `json:"lastName,omitempty" form:"lastName"`
	PhoneNumber string `json:"phoneNumber,omitempty" form:"phoneNumber"`
}

type MessageResponse struct {
	Message string `json:"message"`
}

type SignupResponse struct {
	Message string `json:"message"`
	Email   string `json:"email"`
}

// Pack is a sellable bundling of an item with its own prices
type Pack struct {
	ID                 int64           `json:"id"`
	Type               string          `json:"type"`
	ItemQuantityInPack int             `json:"itemQuantityInPack"`
	CostPrice          decimal.Decimal `json:"costPrice"`
	SellingPrice       decimal.Decimal `json:"sellingPrice"`
}

// Item is a stocked item; owned by the server, cached locally only until the next fetch
type Item struct {
	ID            int64   `json:"id"`
	Name          string  `json:"name"`
	TotalQuantity int     `json:"totalQuantity"`
	Active        bool    `json:"active"`
	ImageURL      *string `json:"imageUrl"`
	CreatedBy     *string `json:"createdBy,omitempty"`
	UpdatedBy     *string `json:"updatedBy,omitempty"`
	Packs         []Pack  `json:"packs"`
}

// PackByType returns the pack with the given type, if present.
func (i *Item) PackByType(packType string) (Pack, bool) {
	for _, p := range i.Packs {
		if p.Type == packType {
			return p, true
		}
	}
	return Pack{}, false
}

type PackCreateRequest struct {
	Type               string          `json:"type"`
	ItemQuantityInPack int             `json:"itemQuantityInPack"`
	CostPrice          decimal.Decimal `json:"costPrice"`
	SellingPrice       decimal.Decimal `json:"sellingPrice"`
}

type ItemCreateRequest struct {
	Name     string              `json:"name" binding:"required"`
	ImageURL *string             `json:"imageUrl,omitempty"`
	Packs    []PackCreateRequest `json:"packs,omitempty"`
}

// UpdatePackRequest: ID 0 means a new pack, Deleted removes an existing one
type UpdatePackRequest struct {
	ID                 int64           `json:"id"`
	Type               string          `json:"type"`
	ItemQuantityInPack int             `json:"itemQuantityInPack"`
	CostPrice          decimal.Decimal `json:"costPrice"`
	SellingPrice       decimal.Decimal `json:"sellingPrice"`
	Deleted            bool            `json:"deleted,omitempty"`
}

type UpdateItemRequest struct {
	Name     string              `json:"name"`
	ImageURL *string             `json:"imageUrl,omitempty"`
	Active   *bool               `json:"active,omitempty"`
	Packs    []UpdatePackRequest `json:"packs"`
}

type AddStockRequest struct {
	PackType     string `json:"packType"`
	PacksToAdd   int    `json:"packsToAdd"`
	SupplySource string `json:"supplySource,omitempty"`
	Notes        string `json:"notes,omitempty"`
}

type UpdateStockRequest AddStockRequest

// StockRecord is one entry of the stock ledger
type StockRecord struct {
	ID                 int64           `json:"id"`
	ItemID             int64           `json:"itemId"`
	ItemName           string          `json:"itemName"`
	PackID             int64           `json:"packId"`
	PackType           string          `json:"packType"`
	PacksAdded         int             `json:"packsAdded"`
	TotalItemsAdded    int             `json:"totalItemsAdded"`
	CostPriceAtTime    decimal.Decimal `json:"costPriceAtTime"`
	SellingPriceAtTime decimal.Decimal `json:"sellingPriceAtTime"`
	SupplySource       string          `json:"supplySource,omitempty"`
	CreatedBy          string          `json:"createdBy"`
	CreatedOn          Timestamp       `json:"createdOn"`
	UpdatedBy          string          `json:"updatedBy,omitempty"`
	UpdatedOn          *Timestamp      `json:"updatedOn,omitempty"`
	Notes              string          `json:"notes,omitempty"`
	IsActive           bool            `json:"isActive"`
}

type StockHistory struct {
	StockRecords    []StockRecord `json:"stockRecords"`
	TotalStockAdded int           `json:"totalStockAdded"`
	LastUpdated     *Timestamp    `json:"lastUpdated,omitempty"`
}

// Payment methods
const (
	PaymentMethodCash          = "CASH"
	PaymentMethodPOS           = "POS"
	PaymentMethodBankTransfer  = "BANK_TRANSFER"
	PaymentMethodMobileMoney   = "MOBILE_MONEY"
	PaymentMethodCreditAccount = "CREDIT_ACCOUNT"
)

// PaymentMethods lists every accepted payment method in display order.
var PaymentMethods = []string{
	PaymentMethodCash,
	PaymentMethodPOS,
	PaymentMethodBankTransfer,
	PaymentMethodMobileMoney,
	PaymentMethodCreditAccount,
}

// ValidPaymentMethod reports whether m is one of PaymentMethods.
func ValidPaymentMethod(m string) bool {
	for _, pm := range PaymentMethods {
		if pm == m {
			return true
		}
	}
	return false
}

// Transaction types
const (
	TransactionTypeSale     = "SALE"
	TransactionTypePurchase = "PURCHASE"
)

// Transaction statuses
const (
	TransactionStatusPending   = "PENDING"
	TransactionStatusCompleted = "COMPLETED"
	TransactionStatusCancelled = "CANCELLED"
)

type TransactionItemRequest struct {
	ItemID   int64  `json:"itemId"`
	PackType string `json:"packType"`
	Quantity int    `json:"quantity"`
}

type PlaceOrderRequest struct {
	CustomerName       string                   `json:"customerName"`
	CustomerPhone      string                   `json:"customerPhone,omitempty"`
	CustomerEmail      string                   `json:"customerEmail,omitempty"`
	CustomerAddress    string                   `json:"customerAddress,omitempty"`
	PaymentMethod      string                   `json:"paymentMethod"`
	Items              []TransactionItemRequest `json:"items"`
	DiscountPercentage *decimal.Decimal         `json:"discountPercentage,omitempty"`
	Notes              string                   `json:"notes,omitempty"`
}

type TransactionItem struct {
	ID           int64           `json:"id"`
	ItemName     string          `json:"itemName"`
	PackType     string          `json:"packType"`
	Quantity     int             `json:"quantity"`
	PackQuantity int             `json:"packQuantity"`
	UnitPrice    decimal.Decimal `json:"unitPrice"`
	LineTotal    decimal.Decimal `json:"lineTotal"`
}

// Transaction is the server-issued record of a committed order
type Transaction struct {
	ID                   int64             `json:"id"`
	TransactionReference string            `json:"transactionReference"`
	TransactionType      string            `json:"transactionType"`
	PaymentMethod        string            `json:"paymentMethod"`
	Status               string            `json:"status"`
	CustomerName         string            `json:"customerName,omitempty"`
	CustomerPhone        string            `json:"customerPhone,omitempty"`
	CustomerEmail        string            `json:"customerEmail,omitempty"`
	CustomerAddress      string            `json:"customerAddress,omitempty"`
	SalesPersonEmail     string            `json:"salesPersonEmail"`
	Items                []TransactionItem `json:"items"`
	Subtotal             decimal.Decimal   `json:"subtotal"`
	DiscountAmount       decimal.Decimal   `json:"discountAmount"`
	TotalAmount          decimal.Decimal   `json:"totalAmount"`
	PaymentReference     string            `json:"paymentReference,omitempty"`
	Notes                string            `json:"notes,omitempty"`
	CreatedOn            Timestamp         `json:"createdOn"`
	CompletedOn          *Timestamp        `json:"completedOn,omitempty"`
	IsActive             bool              `json:"isActive"`
}

type TransactionPage struct {
	Content       []Transaction `json:"content"`
	Page          int           `json:"page"`
	Size          int           `json:"size"`
	TotalElements int64         `json:"totalElements"`
	TotalPages    int           `json:"totalPages"`
	First         bool          `json:"first"`
	Last          bool          `json:"last"`
}

// TransactionFilter holds the optional query parameters of the transactions listing
type TransactionFilter struct {
	Page             int    `form:"page"`
	Size             int    `form:"size"`
	SalesPersonEmail string `form:"salesPersonEmail"`
	CustomerEmail    string `form:"customerEmail"`
	PaymentMethod    string `form:"paymentMethod"`
	StartDate        string `form:"startDate"`
	EndDate          string `form:"endDate"`
}

type PaymentMethodIncome struct {
	PaymentMethod string          `json:"paymentMethod"`
	Income        decimal.Decimal `json:"income"`
}

type IncomeByPaymentMethod struct {
	Data       []PaymentMethodIncome `json:"data"`
	GrandTotal decimal.Decimal       `json:"grandTotal"`
	Currency   string                `json:"currency"`
}

type ItemSales struct {
	ItemID            int64           `json:"itemId"`
	ItemName          string          `json:"itemName"`
	TotalQuantitySold int             `json:"totalQuantitySold"`
	TotalRevenue      decimal.Decimal `json:"totalRevenue"`
}
