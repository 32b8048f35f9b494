package inquiry

import "strings"

const (
	MsgPhoneEmpty      = "Введите номер телефона"
	MsgPhoneRUShort    = "Номер телефона должен содержать 10 цифр после кода страны"
	MsgPhonePLShort    = "Польский номер должен содержать 9 цифр после кода страны"
	MsgPhoneBYShort    = "Белорусский номер должен содержать 9 цифр после кода страны"
	MsgPhoneTooLong    = "Номер телефона слишком длинный"
	MsgPhoneBadFormat  = "Неверный формат номера телефона"
	MsgPhoneCheckInput = "Проверьте правильность номера телефона"
)

// PhoneValidation is the outcome of ValidatePhone. Message is set only when Valid is false.
type PhoneValidation struct {
	Valid     bool
	Formatted string
	Message   string
}

// PhoneDigits strips everything but ASCII digits.
func PhoneDigits(phone string) string {
	var b strings.Builder
	for _, r := range phone {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// FormatPhone renders partial or complete input the way the contact form displays it.
// 7 and 8 prefixes are Russian/Kazakh numbers, 48 is Polish, 375 is Belarusian; anything
// else with at least ten digits is treated as a Russian number without country code.
func FormatPhone(input string) string {
	digits := PhoneDigits(input)
	switch {
	case digits == "":
		return ""
	case strings.HasPrefix(digits, "7") || strings.HasPrefix(digits, "8"):
		return formatRU(limit(digits[1:], 10))
	case strings.HasPrefix(digits, "48"):
		return formatPL(limit(digits[2:], 9))
	case strings.HasPrefix(digits, "375"):
		return formatBY(limit(digits[3:], 9))
	case len(digits) >= 10:
		return formatRU(digits[len(digits)-10:])
	default:
		return "+7 (" + digits
	}
}

func formatRU(n string) string {
	switch {
	case len(n) <= 3:
		return "+7 (" + n
	case len(n) <= 6:
		return "+7 (" + n[:3] + ") " + n[3:]
	case len(n) <= 8:
		return "+7 (" + n[:3] + ") " + n[3:6] + "-" + n[6:]
	default:
		return "+7 (" + n[:3] + ") " + n[3:6] + "-" + n[6:8] + "-" + n[8:]
	}
}

func formatPL(n string) string {
	switch {
	case len(n) <= 3:
		return "+48 " + n
	case len(n) <= 6:
		return "+48 " + n[:3] + " " + n[3:]
	default:
		return "+48 " + n[:3] + " " + n[3:6] + " " + n[6:]
	}
}

func formatBY(n string) string {
	switch {
	case len(n) <= 2:
		return "+375 (" + n
	case len(n) <= 5:
		return "+375 (" + n[:2] + ") " + n[2:]
	case len(n) <= 7:
		return "+375 (" + n[:2] + ") " + n[2:5] + "-" + n[5:]
	default:
		return "+375 (" + n[:2] + ") " + n[2:5] + "-" + n[5:7] + "-" + n[7:]
	}
}

// ValidatePhone checks completeness of a (possibly formatted) number. Formatted holds the
// canonical rendering of the digits.
func ValidatePhone(phone string) PhoneValidation {
	digits := PhoneDigits(phone)
	res := PhoneValidation{Formatted: FormatPhone(phone)}

	switch {
	case digits == "":
		res.Message = MsgPhoneEmpty
	case strings.HasPrefix(digits, "7") || strings.HasPrefix(digits, "8"):
		res.Message = lengthMessage(len(digits)-1, 10, MsgPhoneRUShort)
	case strings.HasPrefix(digits, "48"):
		res.Message = lengthMessage(len(digits)-2, 9, MsgPhonePLShort)
	case strings.HasPrefix(digits, "375"):
		res.Message = lengthMessage(len(digits)-3, 9, MsgPhoneBYShort)
	case len(digits) != 10:
		res.Message = MsgPhoneBadFormat
	}
	res.Valid = res.Message == ""
	return res
}

func lengthMessage(n, want int, short string) string {
	switch {
	case n < want:
		return short
	case n > want:
		return MsgPhoneTooLong
	default:
		return ""
	}
}

func limit(s string, n int) string {
	if len(s) > n {
		return s[:n]
	}
	return s
}
