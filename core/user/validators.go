package user

import (
	"strings"

	"github.com/pmezard/go-difflib/difflib"
)

var (
	// password policy
	pwdMinLen = 6
	pwdMaxSim = .7
)

// isWeakPassword applies the password policy:
// - minLen: 6
// - not too similar to the email (or its local part)
func isWeakPassword(pwd, email string) bool {
	if len([]rune(pwd)) < pwdMinLen {
		return true
	}

	getRatio := func(pass, usrAttr string) float64 {
		if usrAttr == "" {
			return 0
		}
		return difflib.NewMatcher(strings.Split(pass, ""), strings.Split(usrAttr, "")).QuickRatio()
	}
	lpwd := strings.ToLower(pwd)
	local := email
	if i := strings.LastIndex(email, "@"); i > 0 {
		local = email[:i]
	}
	return getRatio(lpwd, email) >= pwdMaxSim || getRatio(lpwd, local) >= pwdMaxSim
}
