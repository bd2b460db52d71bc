package create_booking

import (
	"fmt"
	"net/mail"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/m04kA/SMC-AppointmentService/internal/domain"
	"github.com/m04kA/SMC-AppointmentService/internal/scheduling"
)

type parsedRequest struct {
	businessID    string
	date          time.Time
	startMinute   int
	selector      domain.StaffSelector
	serviceIDs    []string
	client        Client
	paymentMethod string
}

// validateRequest валидирует входные данные и нормализует их
func validateRequest(req *Request) (*parsedRequest, error) {
	if _, err := uuid.Parse(req.BusinessID); err != nil {
		return nil, fmt.Errorf("%w: businessId must be a UUID", ErrMissingFields)
	}

	date, err := time.Parse(domain.DateFormat, strings.TrimSpace(req.Date))
	if err != nil {
		return nil, fmt.Errorf("%w: date must be YYYY-MM-DD", ErrMissingFields)
	}

	startMinute, err := scheduling.TimeToMinutes(strings.TrimSpace(req.Time))
	if err != nil || startMinute >= domain.MinutesPerDay {
		return nil, fmt.Errorf("%w: time must be HH:MM", ErrMissingFields)
	}

	selector := domain.ParseStaffSelector(req.StaffID)
	if strings.TrimSpace(req.StaffID) == "" {
		return nil, fmt.Errorf("%w: staffId is required", ErrMissingFields)
	}
	if !selector.IsAny() {
		if _, err := uuid.Parse(selector.StaffID); err != nil {
			return nil, fmt.Errorf("%w: staffId must be a UUID or %q", ErrMissingFields, domain.StaffSelectorAny)
		}
	}

	serviceIDs, err := uniqueServiceIDs(req.ServiceIDs)
	if err != nil {
		return nil, err
	}

	client, err := validateClient(req.Client)
	if err != nil {
		return nil, err
	}

	paymentMethod := strings.ToLower(strings.TrimSpace(req.PaymentMethod))
	if paymentMethod == "" {
		return nil, fmt.Errorf("%w: paymentMethod is required", ErrMissingFields)
	}

	return &parsedRequest{
		businessID:    req.BusinessID,
		date:          date,
		startMinute:   startMinute,
		selector:      selector,
		serviceIDs:    serviceIDs,
		client:        client,
		paymentMethod: paymentMethod,
	}, nil
}

// uniqueServiceIDs убирает повторы с сохранением порядка
func uniqueServiceIDs(ids []string) ([]string, error) {
	if len(ids) == 0 {
		return nil, fmt.Errorf("%w: at least one service is required", ErrMissingFields)
	}

	seen := make(map[string]struct{}, len(ids))
	result := make([]string, 0, len(ids))
	for _, id := range ids {
		id = strings.TrimSpace(id)
		if _, err := uuid.Parse(id); err != nil {
			return nil, fmt.Errorf("%w: service id %q is not a UUID", ErrInvalidServices, id)
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		result = append(result, id)
	}
	return result, nil
}

func validateClient(c Client) (Client, error) {
	c.Name = strings.TrimSpace(c.Name)
	c.Email = strings.ToLower(strings.TrimSpace(c.Email))
	c.Phone = strings.TrimSpace(c.Phone)

	if c.Name == "" || c.Email == "" || c.Phone == "" {
		return c, fmt.Errorf("%w: client name, email and phone are required", ErrMissingFields)
	}
	if utf8.RuneCountInString(c.Name) > domain.MaxNameLength {
		return c, fmt.Errorf("%w: client name is longer than %d characters", ErrMissingFields, domain.MaxNameLength)
	}
	if addr, err := mail.ParseAddress(c.Email); err != nil || addr.Address != c.Email {
		return c, fmt.Errorf("%w: client email is invalid", ErrMissingFields)
	}
	if digits := countDigits(c.Phone); digits < domain.MinPhoneDigits || digits > domain.MaxPhoneDigits {
		return c, fmt.Errorf("%w: client phone must contain %d-%d digits", ErrMissingFields, domain.MinPhoneDigits, domain.MaxPhoneDigits)
	}

	if c.Comment != nil {
		comment := strings.TrimSpace(*c.Comment)
		if utf8.RuneCountInString(comment) > domain.MaxCommentLength {
			return c, fmt.Errorf("%w: comment is longer than %d characters", ErrMissingFields, domain.MaxCommentLength)
		}
		if comment == "" {
			c.Comment = nil
		} else {
			c.Comment = &comment
		}
	}

	return c, nil
}

func countDigits(value string) int {
	count := 0
	for _, r := range value {
		if unicode.IsDigit(r) {
			count++
		}
	}
	return count
}
