package shopify

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"net/url"
	"sort"
	"strings"
)

// VerifyWebhook checks the X-Shopify-Hmac-Sha256 header against the raw
// request body using the app secret.
func VerifyWebhook(body []byte, hmacHeader, secret string) bool {
	if hmacHeader == "" || secret == "" {
		return false
	}
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	expected := base64.StdEncoding.EncodeToString(mac.Sum(nil))
	return hmac.Equal([]byte(expected), []byte(hmacHeader))
}

// VerifyAppProxyRequest validates the hmac query parameter Shopify attaches
// to app proxy and carrier callback requests. The signed message is the
// remaining query parameters sorted by key and joined with '&'.
func VerifyAppProxyRequest(query url.Values, secret string) bool {
	if secret == "" {
		return false
	}
	signature := query.Get("hmac")
	if signature == "" {
		return false
	}

	keys := make([]string, 0, len(query))
	for key := range query {
		if key == "hmac" || key == "signature" {
			continue
		}
		keys = append(keys, key)
	}
	sort.Strings(keys)

	pairs := make([]string, 0, len(keys))
	for _, key := range keys {
		pairs = append(pairs, key+"="+query.Get(key))
	}
	message := strings.Join(pairs, "&")

	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(message))
	expected := hex.EncodeToString(mac.Sum(nil))
	return hmac.Equal([]byte(expected), []byte(signature))
}
