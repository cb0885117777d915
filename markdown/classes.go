package markdown

// CSS class names shared by the Renderer and the Extractor. The Extractor
// matches on these exact strings, so renaming one is a breaking change for
// both sides.
const (
	classContent = "markdown-content"

	classHeading   = "markdown-heading"
	classParagraph = "markdown-paragraph"

	classList          = "markdown-list"
	classListUnordered = "markdown-list-unordered"
	classListOrdered   = "markdown-list-ordered"
	classListItem      = "markdown-list-item"

	classBlockquote  = "markdown-blockquote"
	classBlockquoteP = "markdown-blockquote-p"

	classAlert        = "markdown-alert"
	classAlertHeader  = "markdown-alert-header"
	classAlertIcon    = "markdown-alert-icon"
	classAlertTitle   = "markdown-alert-title"
	classAlertContent = "markdown-alert-content"

	classCodeBlock  = "markdown-code-block"
	classCodeHeader = "code-header"
	classCodeLang   = "code-lang"
	classCopyButton = "copy-code-btn"
	classCodeBody   = "markdown-code"

	classInlineCode = "markdown-inline-code"
	classStrong     = "markdown-strong"
	classEm         = "markdown-em"
	classLink       = "markdown-link"

	classTableContainer = "markdown-table-container"
	classTable          = "markdown-table"
	classTableHead      = "markdown-table-head"
	classTableBody      = "markdown-table-body"
	classTableRow       = "markdown-table-row"
	classTableHeader    = "markdown-table-header"
	classTableCell      = "markdown-table-cell"

	classRule = "markdown-hr"
)

// Classes lists every class name the Renderer can emit. Sanitizers use it to
// keep renderer output intact.
func Classes() []string {
	return []string{
		classContent,
		classHeading, classParagraph,
		classList, classListUnordered, classListOrdered, classListItem,
		classBlockquote, classBlockquoteP,
		classAlert, classAlertHeader, classAlertIcon, classAlertTitle, classAlertContent,
		classCodeBlock, classCodeHeader, classCodeLang, classCopyButton, classCodeBody,
		classInlineCode, classStrong, classEm, classLink,
		classTableContainer, classTable, classTableHead, classTableBody,
		classTableRow, classTableHeader, classTableCell,
		classRule,
	}
}
