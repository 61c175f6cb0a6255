package models

import (
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

// BankAccount is a payout account shown to guests as transfer destination.
type BankAccount struct {
	ID            uint   `gorm:"primaryKey" json:"id"`
	TenantID      uint   `gorm:"index;not null" json:"-"`
	BankName      string `gorm:"size:100;not null" json:"bankName" validate:"required"`
	BankCode      string `gorm:"size:20;not null" json:"bankCode" validate:"required,alphanum"`
	AccountNumber string `gorm:"size:30;not null" json:"accountNumber" validate:"required,numeric"`
	AccountHolder string `gorm:"size:100;not null" json:"accountHolder" validate:"required"`
}

// account number lengths per bank code, min and max inclusive
var accountNumberLengths = map[string][2]int{
	"BCA":     {10, 10},
	"BNI":     {10, 10},
	"BRI":     {15, 15},
	"MANDIRI": {13, 13},
	"CIMB":    {13, 14},
	"PERMATA": {10, 16},
}

func validateAccountNumber(bankCode, accountNumber string) error {
	length := len(accountNumber)
	rule, ok := accountNumberLengths[bankCode]
	if !ok {
		rule = [2]int{6, 20}
	}
	if length < rule[0] || length > rule[1] {
		if rule[0] == rule[1] {
			return fmt.Errorf("account number for %s must have %d digits", bankCode, rule[0])
		}
		return fmt.Errorf("account number for %s must have %d to %d digits", bankCode, rule[0], rule[1])
	}
	return nil
}

var bankValidate = validator.New()

// Validate normalizes the bank code and checks field and per-bank rules.
func (b *BankAccount) Validate() error {
	b.BankCode = strings.ToUpper(strings.TrimSpace(b.BankCode))
	b.AccountNumber = strings.TrimSpace(b.AccountNumber)

	if err := bankValidate.Struct(b); err != nil {
		return err
	}
	return validateAccountNumber(b.BankCode, b.AccountNumber)
}
