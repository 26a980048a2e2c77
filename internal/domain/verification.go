package domain

import "time"

// VerificationCode is the one-time code most recently issued for an email.
// PK: email. Each issuance overwrites the record and bumps Revision.
// ExpiresAt is informational only; lookups do not filter on it.
type VerificationCode struct {
	Email     string    `json:"email" dynamodbav:"email"`
	Code      string    `json:"code" dynamodbav:"code"`
	ExpiresAt time.Time `json:"expires_at" dynamodbav:"expires_at"`
	Revision  int64     `json:"revision" dynamodbav:"revision"`
}

type IssueCodeRequest struct {
	Email string `json:"email"`
}

type CheckCodeRequest struct {
	Email string `json:"email"`
	Code  string `json:"code"`
}
