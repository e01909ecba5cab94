package domain

import "time"

// Account is a user's spendable balance and stored payment card.
type Account struct {
	UserID        string
	Balance       Money
	EncryptedCard []byte
	Version       int64
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// ValidateDebit checks if the account can be debited by amount.
func (a *Account) ValidateDebit(amount Money) error {
	if !amount.IsPositive() {
		return ErrInvalidAmount
	}
	if a.Balance < amount {
		return ErrInsufficientFunds
	}
	return nil
}

// ValidateCredit checks if the account can be credited by amount.
func (a *Account) ValidateCredit(amount Money) error {
	if !amount.IsPositive() {
		return ErrInvalidAmount
	}
	if _, err := a.Balance.Add(amount); err != nil {
		return err
	}
	return nil
}

// ApplyDebit returns new balance after debit.
func (a *Account) ApplyDebit(amount Money) Money {
	return a.Balance - amount
}

// ApplyCredit returns new balance after credit.
func (a *Account) ApplyCredit(amount Money) Money {
	return a.Balance + amount
}
