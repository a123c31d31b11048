package blocks

import (
	"sort"
	"strings"
	"unicode"
)

// BlockType is the registration metadata of a block.
type BlockType struct {
	Name        BlockID `yaml:"name" json:"name"`
	Title       string  `yaml:"title,omitempty" json:"title,omitempty"`
	Description string  `yaml:"description,omitempty" json:"description,omitempty"`
	Category    string  `yaml:"category,omitempty" json:"category,omitempty"`
	Parent      BlockID `yaml:"parent,omitempty" json:"parent,omitempty"`
}

// Entry is a block as shown in the settings catalog.
type Entry struct {
	Slug        BlockID   `json:"slug"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Category    string    `json:"category"`
	Namespace   string    `json:"namespace"`
	Parent      BlockID   `json:"parent,omitempty"`
	IsParent    bool      `json:"is_parent"`
	Children    []BlockID `json:"children,omitempty"`
}

// readableTitles covers blocks that commonly register without a title.
var readableTitles = map[BlockID]string{
	"core/freeform":                           "Classic Editor",
	"core/missing":                            "Missing Block",
	"core/legacy-widget":                      "Legacy Widget",
	"core/widget-group":                       "Widget Group",
	"core/html":                               "Custom HTML",
	"acf/acf-block":                           "ACF Block",
	"gravityforms/form":                       "Gravity Forms",
	"contact-form-7/contact-form-selector":    "Contact Form 7",
	"mailchimp-for-wp/form":                   "Mailchimp Form",
	"woocommerce/product-price":               "Product Price",
	"woocommerce/product-image":               "Product Image",
	"jetpack/contact-form":                    "Contact Form",
	"jetpack/markdown":                        "Markdown",
	"kadence/spacer":                          "Spacer",
	"kadence/rowlayout":                       "Row Layout",
	"genesis-blocks/gb-container":             "Container",
	"ultimate-addons-for-gutenberg/container": "UAG Container",
	"stackable/separator":                     "Stackable Separator",
	"blocksy/dynamic-data":                    "Dynamic Data",
}

var titleReplacer = strings.NewReplacer(
	"Acf", "ACF",
	"Html", "HTML",
	"Css", "CSS",
	"Js", "JS",
	"Rss", "RSS",
	"Seo", "SEO",
	"Api", "API",
	"Url", "URL",
	"Uag", "UAG",
	"Gb", "Genesis",
)

// Title picks a display title: the registered title, then the readable-title table,
// then one generated from the slug.
func Title(bt BlockType) string {
	if strings.TrimSpace(bt.Title) != "" {
		return bt.Title
	}
	if t, ok := readableTitles[bt.Name]; ok {
		return t
	}
	return TitleFromSlug(bt.Name)
}

// TitleFromSlug turns "core/page-list" into "Page List" and "kadence/rowlayout" into
// "Rowlayout (Kadence)".
func TitleFromSlug(id BlockID) string {
	parts := strings.Split(string(id), "/")
	if len(parts) != 2 {
		return slugToTitle(string(id))
	}
	title := slugToTitle(parts[1])
	if parts[0] != "core" {
		return title + " (" + upperFirst(parts[0]) + ")"
	}
	return title
}

func slugToTitle(slug string) string {
	words := strings.Fields(strings.NewReplacer("-", " ", "_", " ").Replace(slug))
	for i, w := range words {
		words[i] = upperFirst(w)
	}
	return titleReplacer.Replace(strings.Join(words, " "))
}

func upperFirst(s string) string {
	if s == "" {
		return s
	}
	r := []rune(s)
	r[0] = unicode.ToUpper(r[0])
	return string(r)
}

// BuildCatalog turns registered types into catalog entries. Parents get their
// children from h; other blocks get a parent from h when one lists them, else keep
// the parent they registered with.
func BuildCatalog(types []BlockType, h HierarchyMap) []Entry {
	out := make([]Entry, 0, len(types))
	for _, bt := range types {
		category := bt.Category
		if category == "" {
			category = "common"
		}
		e := Entry{
			Slug:        bt.Name,
			Title:       Title(bt),
			Description: bt.Description,
			Category:    category,
			Namespace:   bt.Name.Namespace(),
			Parent:      bt.Parent,
		}
		if h.IsParent(bt.Name) {
			e.IsParent = true
			e.Children = append([]BlockID(nil), h[bt.Name]...)
		} else if parent, ok := h.ParentOf(bt.Name); ok {
			e.Parent = parent
		}
		out = append(out, e)
	}
	return out
}

// TopLevel keeps parents and parentless blocks, sorted by namespace then title.
func TopLevel(entries []Entry) []Entry {
	out := make([]Entry, 0, len(entries))
	for _, e := range entries {
		if e.IsParent || e.Parent == "" {
			out = append(out, e)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Namespace+out[i].Title < out[j].Namespace+out[j].Title
	})
	return out
}
