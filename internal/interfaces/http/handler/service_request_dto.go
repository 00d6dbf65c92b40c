package handler

import "github.com/shopspring/decimal"

// SubmitServiceRequestRequest is the payload for submitting a lookup request
type SubmitServiceRequestRequest struct {
	SourceType          string          `json:"sourceType" binding:"required,oneof=imei phoneNumber"`
	IMEI                string          `json:"imei" binding:"omitempty,len=15,numeric"`
	PhoneNumber         string          `json:"phoneNumber" binding:"omitempty,bd_phone"`
	LastUsedPhoneNumber string          `json:"lastUsedPhoneNumber" binding:"omitempty,bd_phone"`
	DataNeeded          []string        `json:"dataNeeded" binding:"required,min=1"`
	ServiceTypes        []string        `json:"serviceTypes" binding:"required,min=1"`
	ServiceCharge       decimal.Decimal `json:"serviceCharge" binding:"required"`
	PaymentMethod       string          `json:"paymentMethod" binding:"required,max=50"`
	TrxID               string          `json:"trxId" binding:"required,min=8"`
	AdditionalNote      string          `json:"additionalNote" binding:"omitempty,max=500"`
}

// SetStatusRequest is a moderator's explicit status decision
type SetStatusRequest struct {
	Status string `json:"status" binding:"required,oneof=Pending Approved Completed Rejected"`
	Notes  string `json:"notes" binding:"omitempty,max=500"`
}

// DeliverDataRequest is the payload for delivering one result record
type DeliverDataRequest struct {
	DataType    string `json:"dataType" binding:"required"`
	DataContent string `json:"dataContent" binding:"required"`
}
