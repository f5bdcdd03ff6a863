// Package payload builds the JSON body of a service call.
package payload

import (
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strings"
)

// RequestType selects how the server executes a service call.
type RequestType string

const (
	Inline     RequestType = "INLINE"
	FutureCall RequestType = "FUTURE_CALL"
	Mail       RequestType = "MAIL"
	SMS        RequestType = "SMS"
)

var (
	ErrMissingService     = errors.New("service name is required")
	ErrUnknownRequestType = errors.New("unknown request type")
	ErrInvalidMailID      = errors.New("invalid mail id")
	ErrInvalidPhoneNo     = errors.New("invalid phone number")
)

var (
	mailPattern  = regexp.MustCompile(`^[a-zA-Z0-9_.+-]+@[a-zA-Z0-9-]+\.[a-zA-Z0-9-.]+$`)
	phonePattern = regexp.MustCompile(`^\+[1-9]\d{1,14}$`)
)

// ParseRequestType trims and upper-cases s and checks it names a known type.
func ParseRequestType(s string) (RequestType, error) {
	rt := RequestType(strings.ToUpper(strings.TrimSpace(s)))
	switch rt {
	case Inline, FutureCall, Mail, SMS:
		return rt, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownRequestType, s)
}

// Payload is the user-facing description of a service call.
type Payload struct {
	Service     string
	Params      map[string]string
	RequestType string
	MailID      string
	PhoneNo     string
}

// body fixes the wire field order.
type body struct {
	ServiceName string            `json:"service_name"`
	SubJSON     map[string]string `json:"sub_json"`
	RequestType RequestType       `json:"request_type"`
	MailID      string            `json:"mail_id,omitempty"`
	PhoneNo     string            `json:"phone_no,omitempty"`
}

// Build validates p and renders it as a compact JSON document.
//
// The service name is lower-cased. MAIL calls need a well-formed mail id and
// SMS calls an E.164 phone number; the contact fields are dropped for the
// other request types.
func Build(p Payload) ([]byte, error) {
	service := strings.ToLower(strings.TrimSpace(p.Service))
	if service == "" {
		return nil, ErrMissingService
	}
	rt, err := ParseRequestType(p.RequestType)
	if err != nil {
		return nil, err
	}

	b := body{
		ServiceName: service,
		SubJSON:     p.Params,
		RequestType: rt,
	}
	if b.SubJSON == nil {
		b.SubJSON = map[string]string{}
	}

	switch rt {
	case Mail:
		if !mailPattern.MatchString(p.MailID) {
			return nil, fmt.Errorf("%w: %q", ErrInvalidMailID, p.MailID)
		}
		b.MailID = p.MailID
	case SMS:
		if !phonePattern.MatchString(p.PhoneNo) {
			return nil, fmt.Errorf("%w: %q", ErrInvalidPhoneNo, p.PhoneNo)
		}
		b.PhoneNo = p.PhoneNo
	}

	return json.Marshal(b)
}
