package event

import (
	"fmt"
	"strings"

	"whatsapp-channel/internal/domain/dto"
)

// FormatContacts renders shared contacts as plain text. Output is
// deterministic: fields always appear in the same order and contacts are
// separated by a blank line.
func FormatContacts(contacts []dto.Contact) string {
	blocks := make([]string, 0, len(contacts))
	for _, c := range contacts {
		blocks = append(blocks, formatContact(c))
	}
	return strings.Join(blocks, "\n\n")
}

func formatContact(c dto.Contact) string {
	var lines []string
	add := func(label, value string) {
		if value != "" {
			lines = append(lines, fmt.Sprintf("%s: %s", label, value))
		}
	}

	lines = append(lines, fmt.Sprintf("Name: %s", c.Name.FormattedName))
	add("First Name", c.Name.FirstName)
	add("Last Name", c.Name.LastName)
	add("Middle Name", c.Name.MiddleName)
	add("Prefix", c.Name.Prefix)
	add("Suffix", c.Name.Suffix)
	add("Birthday", c.Birthday)

	if c.Org != nil && (c.Org.Company != "" || c.Org.Department != "" || c.Org.Title != "") {
		lines = append(lines, "Organization:")
		if c.Org.Company != "" {
			lines = append(lines, "  Company: "+c.Org.Company)
		}
		if c.Org.Department != "" {
			lines = append(lines, "  Department: "+c.Org.Department)
		}
		if c.Org.Title != "" {
			lines = append(lines, "  Title: "+c.Org.Title)
		}
	}

	if len(c.Emails) > 0 {
		lines = append(lines, "Emails:")
		for _, e := range c.Emails {
			lines = append(lines, listItem(e.Email, e.Type))
		}
	}

	if len(c.Phones) > 0 {
		lines = append(lines, "Phones:")
		for _, p := range c.Phones {
			lines = append(lines, listItem(p.Phone, p.Type))
		}
	}

	if len(c.Addresses) > 0 {
		lines = append(lines, "Addresses:")
		for _, a := range c.Addresses {
			lines = append(lines, listItem(joinNonEmpty(", ", a.Street, a.City, a.State, a.Zip, a.Country), a.Type))
		}
	}

	if len(c.URLs) > 0 {
		lines = append(lines, "URLs:")
		for _, u := range c.URLs {
			lines = append(lines, listItem(u.URL, u.Type))
		}
	}

	return strings.Join(lines, "\n")
}

func listItem(value, kind string) string {
	if kind == "" {
		return "  - " + value
	}
	return fmt.Sprintf("  - %s (%s)", value, kind)
}

func joinNonEmpty(sep string, parts ...string) string {
	kept := parts[:0:0]
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			kept = append(kept, p)
		}
	}
	return strings.Join(kept, sep)
}
