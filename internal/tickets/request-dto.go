package tickets

import "github.com/shopspring/decimal"

type AssignTicketRequest struct {
	TicketTypeID      string           `json:"ticketTypeId" binding:"required,max=128"`
	Price             *decimal.Decimal `json:"price" binding:"required"`
	OverridesChildren bool             `json:"overridesChildren"`
}
