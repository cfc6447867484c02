package signing

import "github.com/Thongheng/HashGen/pkg/domain"

// DefaultSnippetName is the canonical entry seeded into new snippet stores.
const DefaultSnippetName = "ABA HMAC SHA256"

// defaultSnippetSource is the JavaScript rendition of ABAHMACSHA256. It must
// stay byte-for-byte compatible with the native implementation; the engine
// tests hold the two to identical digests.
const defaultSnippetSource = `function generate(payload, passcode, apiKey, keyOrder) {
    if (passcode.length < 16) {
        throw new Error("PassCode must be at least 16 characters long.");
    }
    var iv = passcode.slice(-16);
    var key = passcode.slice(0, passcode.length - 16);

    var concat = apiKey ? apiKey : "";

    var keys = keyOrder ? keyOrder : Object.keys(payload).filter(function (k) {
        return k !== "hash" && k !== "__keys_order__";
    });

    for (var i = 0; i < keys.length; i++) {
        var val = payload[keys[i]];
        if (val === null || val === undefined) {
            val = "";
        }
        concat += String(val);
    }

    return hmac.sha256(key, iv + concat);
}`

// DefaultSnippet returns the seeded snippet entry.
func DefaultSnippet() domain.Snippet {
	return domain.Snippet{
		Name:        DefaultSnippetName,
		Code:        defaultSnippetSource,
		Description: "Original ABA HMAC-SHA256 implementation",
	}
}
