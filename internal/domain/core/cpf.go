package core

import "strings"

const cpfDigits = 11

// NormalizeCPF strips everything but digits, so "529.982.247-25" and
// "52998224725" compare equal.
func NormalizeCPF(raw string) string {
	var b strings.Builder
	b.Grow(cpfDigits)
	for _, r := range raw {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// ValidCPF checks length, both check digits and rejects repeated-digit
// sequences such as 111.111.111-11.
func ValidCPF(raw string) bool {
	cpf := NormalizeCPF(raw)
	if len(cpf) != cpfDigits {
		return false
	}
	if strings.Count(cpf, cpf[:1]) == cpfDigits {
		return false
	}
	digits := make([]int, cpfDigits)
	for i := range cpf {
		digits[i] = int(cpf[i] - '0')
	}
	return checkDigit(digits[:9]) == digits[9] && checkDigit(digits[:10]) == digits[10]
}

func checkDigit(digits []int) int {
	sum := 0
	weight := len(digits) + 1
	for _, d := range digits {
		sum += d * weight
		weight--
	}
	rest := (sum * 10) % 11
	if rest == 10 {
		return 0
	}
	return rest
}

func FormatCPF(raw string) string {
	cpf := NormalizeCPF(raw)
	if len(cpf) != cpfDigits {
		return raw
	}
	return cpf[0:3] + "." + cpf[3:6] + "." + cpf[6:9] + "-" + cpf[9:11]
}
