package ledger

import (
	"strings"

	"github.com/workledger/backend/internal/domain/shared"
)

// Client represents a customer of the business. Clients own jobs and are
// referenced by work records.
type Client struct {
	shared.Entity
	Name    string `gorm:"type:varchar(200);not null" validate:"required,max=200"`
	Phone   string `gorm:"type:varchar(50)" validate:"max=50"`
	Address string `gorm:"type:varchar(500)" validate:"max=500"`
}

// TableName returns the table name for GORM
func (Client) TableName() string {
	return "clients"
}

// NewClient creates a new client with normalized fields
func NewClient(name, phone, address string) (*Client, error) {
	client := &Client{
		Name:    name,
		Phone:   phone,
		Address: address,
	}
	client.Normalize()
	if client.Name == "" {
		return nil, shared.NewDomainError("INVALID_NAME", "Client name cannot be empty")
	}
	if len(client.Name) > 200 {
		return nil, shared.NewDomainError("INVALID_NAME", "Client name cannot exceed 200 characters")
	}
	return client, nil
}

// Normalize trims surrounding whitespace from all identifying fields.
// Case folding for uniqueness is handled by the store's index, not here.
func (c *Client) Normalize() {
	c.Name = strings.TrimSpace(c.Name)
	c.Phone = strings.TrimSpace(c.Phone)
	c.Address = strings.TrimSpace(c.Address)
}

// IdentityKey returns the normalized (name, phone, address) triple used for
// duplicate detection.
func (c *Client) IdentityKey() string {
	return strings.ToLower(c.Name) + "|" + strings.ToLower(c.Phone) + "|" + strings.ToLower(c.Address)
}
