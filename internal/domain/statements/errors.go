package statements

// ValidationError carries a message meant verbatim for API clients.
type ValidationError struct {
	msg string
}

func (e *ValidationError) Error() string { return e.msg }

// Client-facing rejections. Handlers compare with errors.Is and write the
// message through unchanged.
var (
	ErrNoFileSelected   = &ValidationError{"No file selected"}
	ErrMissingYearMonth = &ValidationError{"Year and month are required"}
	ErrInvalidFileType  = &ValidationError{"Invalid file type. Please upload a PDF file."}
	ErrFileTooLarge     = &ValidationError{"File too large"}
	ErrMissingFields    = &ValidationError{"Missing required fields: date, description, amount"}
	ErrInvalidDate      = &ValidationError{"Invalid date"}
	ErrInvalidAmount    = &ValidationError{"Invalid amount"}
	ErrInvalidCategory  = &ValidationError{"Invalid category"}
)
