package auth

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/qs-lzh/yamdb/internal/model"
)

const confirmationSalt = "yamdb.auth.confirmation"

// CodeGenerator derives confirmation codes from a user's mutable secret
// state. Nothing is stored: a code stops matching as soon as the user's
// password hash, last login or email changes, or once it is older than ttl.
//
// Code format: base36(unix seconds) "-" 32 hex chars of HMAC-SHA256.
type CodeGenerator struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

func NewCodeGenerator(secret string, ttl time.Duration) (*CodeGenerator, error) {
	if secret == "" {
		return nil, ErrEmptySecret
	}
	return &CodeGenerator{
		secret: []byte(secret),
		ttl:    ttl,
		now:    time.Now,
	}, nil
}

func (g *CodeGenerator) Make(user *model.User) string {
	return g.makeWithTimestamp(user, g.now().Unix())
}

func (g *CodeGenerator) Check(user *model.User, code string) bool {
	if user == nil || code == "" {
		return false
	}
	tsPart, _, ok := strings.Cut(code, "-")
	if !ok {
		return false
	}
	ts, err := strconv.ParseInt(tsPart, 36, 64)
	if err != nil || ts < 0 {
		return false
	}

	expected := g.makeWithTimestamp(user, ts)
	if !hmac.Equal([]byte(expected), []byte(code)) {
		return false
	}

	if g.ttl > 0 && g.now().Unix()-ts > int64(g.ttl/time.Second) {
		return false
	}
	return true
}

func (g *CodeGenerator) makeWithTimestamp(user *model.User, ts int64) string {
	mac := hmac.New(sha256.New, g.secret)
	mac.Write([]byte(confirmationSalt))
	mac.Write([]byte(hashValue(user, ts)))
	sum := hex.EncodeToString(mac.Sum(nil))
	return strconv.FormatInt(ts, 36) + "-" + sum[:32]
}

func hashValue(user *model.User, ts int64) string {
	lastLogin := ""
	if user.LastLogin != nil {
		lastLogin = strconv.FormatInt(user.LastLogin.UTC().Truncate(time.Second).Unix(), 10)
	}
	return fmt.Sprintf("%d|%s|%s|%d|%s", user.ID, user.HashedPassword, lastLogin, ts, user.Email)
}
