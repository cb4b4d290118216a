package bank

// ExtractErrorMessage digs a human-readable message out of the bank's error
// envelope. The API is not consistent about where it puts the message, so the
// known spots are probed in order of how specific they are.
func ExtractErrorMessage(data map[string]interface{}) string {
	if data != nil {
		if msg, ok := data["message"].(string); ok && msg != "" {
			return msg
		}
		if msg, ok := data["error_description"].(string); ok && msg != "" {
			return msg
		}
		if msg, ok := data["error"].(string); ok && msg != "" {
			return msg
		}
		if errs, ok := data["errors"].([]interface{}); ok && len(errs) > 0 {
			if first, ok := errs[0].(map[string]interface{}); ok {
				if msg, ok := first["message"].(string); ok && msg != "" {
					return msg
				}
			}
		}
	}
	return "unknown error returned by bank"
}
