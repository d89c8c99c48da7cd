package testhelpers

import (
	"encoding/json"
	"fmt"
	"strings"
)

// ExternalRecord builds a record shaped like the public recipe API
func ExternalRecord(id int, name string) json.RawMessage {
	return json.RawMessage(fmt.Sprintf(
		`{"id":%d,"name":%q,"ingredients":["Salt"],"instructions":["Cook."],"servings":2,"tags":["Quick"],"image":"https://cdn.example.com/%d.webp"}`,
		id, name, id))
}

// BackendRecord builds a record shaped like the PHP store output, numbers as strings
func BackendRecord(id, userID int, name, visibility string, approved int) json.RawMessage {
	return json.RawMessage(fmt.Sprintf(
		`{"id":"%d","userId":"%d","name":%q,"ingredients":["Beef"],"instructions":"Brown.\nSimmer.","servings":"4","tags":"stew,winter","image":"http://localhost/MyRecipeUploads/%d.jpg","cookTimeMinutes":"60","prepTimeMinutes":"","cuisine":"","difficulty":"","visibility":%q,"isApproved":"%d"}`,
		id, userID, name, id, visibility, approved))
}

// Envelope wraps records the way both sources list them
func Envelope(records ...json.RawMessage) string {
	parts := make([]string, 0, len(records))
	for _, r := range records {
		parts = append(parts, string(r))
	}
	return `{"success":true,"recipes":[` + strings.Join(parts, ",") + `]}`
}
