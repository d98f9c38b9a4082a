// Package sms delivers verification codes to phones.
package sms

import "context"

// Sender delivers a text message to an E.164 phone number.
type Sender interface {
	Send(ctx context.Context, phone string, text string) error
}
