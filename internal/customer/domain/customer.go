package domain

import "event-admin-console/internal/validation"

// Customer is an organisation that runs events on the platform.
type Customer struct {
	ID            int             `json:"id"`
	CompanyName   string          `json:"companyName"`
	AddressLine1  string          `json:"addressLine1"`
	AddressLine2  string          `json:"addressLine2"`
	City          string          `json:"city"`
	StateProvince string          `json:"stateProvince"`
	PostalCode    string          `json:"postalCode"`
	Country       string          `json:"country"`
	FirstName     string          `json:"firstName"`
	LastName      string          `json:"lastName"`
	EmailAddress  string          `json:"emailAddress"`
	PhoneNumber   string          `json:"phoneNumber"`
	CreatedBy     int             `json:"createdBy"`
	CreatedDate   string          `json:"createdDate"`
	ModifiedBy    *int            `json:"modifiedBy"`
	ModifiedDate  *string         `json:"modifiedDate"`
	IsActive      bool            `json:"isActive"`
	Events        []CustomerEvent `json:"events"`
}

// CustomerEvent is an event summary embedded in a customer.
type CustomerEvent struct {
	ID               int    `json:"id"`
	CustomerID       int    `json:"customerId"`
	Title            string `json:"title"`
	Description      string `json:"description"`
	PaymentDetailsID int    `json:"paymentDetailsId"`
	EventCategoryID  int    `json:"eventCategoryId"`
	EventModeID      int    `json:"eventModeId"`
	EventStatusID    int    `json:"eventStatusId"`
	StartDateTime    string `json:"startDateTime"`
	EndDateTime      string `json:"enddatetime"`
	IsActive         bool   `json:"isActive"`
	CreatedBy        int    `json:"createdBy"`
	CreatedDate      string `json:"createdDate"`
	ModifiedBy       int    `json:"modifiedBy"`
	ModifiedDate     string `json:"modifiedDate"`
	Payment          bool   `json:"payment"`
}

// CreateCustomerRequest is the create payload. The backend spells the state field stateProvience.
type CreateCustomerRequest struct {
	CompanyName   string `json:"companyName"`
	AddressLine1  string `json:"addressLine1"`
	AddressLine2  string `json:"addressLine2,omitempty"`
	City          string `json:"city"`
	StateProvince string `json:"stateProvience"`
	PostalCode    string `json:"postalCode,omitempty"`
	Country       string `json:"country"`
	FirstName     string `json:"firstName"`
	LastName      string `json:"lastName"`
	EmailAddress  string `json:"emailAddress"`
	PhoneNumber   string `json:"phoneNumber,omitempty"`
}

// Validate returns the first validation failure, in form order.
func (r *CreateCustomerRequest) Validate() error {
	return validation.First(
		validation.Required("companyName", "Company name", r.CompanyName),
		validation.Required("addressLine1", "Address line 1", r.AddressLine1),
		validation.Required("city", "City", r.City),
		validation.Required("stateProvience", "State/Province", r.StateProvince),
		validation.Required("country", "Country", r.Country),
		validation.Required("firstName", "First name", r.FirstName),
		validation.Required("lastName", "Last name", r.LastName),
		validation.Email("emailAddress", r.EmailAddress),
	)
}
