package rpcs

// NewAstralaneChannel sends through the Astralane iris gateway. The key travels
// in the api_key header and MEV protection is switched off per request.
func NewAstralaneChannel(endpoint, apiKey string, tips *TipPicker) *JSONRPCChannel {
	c := NewJSONRPCChannel("astralane", endpoint, Header{Key: "api_key", Value: apiKey}, tips)
	c.extra = []any{map[string]any{"mevProtect": false}}
	return c
}
