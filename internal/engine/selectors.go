package engine

// CSS selectors for the product feedback feed
const (
	// One review
	ContainerSelector = ".comments__item.feedback"

	// Fields inside a review
	DateSelector   = ".feedback__date"
	AuthorSelector = ".feedback__info-header"
	TextSelector   = ".feedback__text"
	RatingSelector = ".feedback__rating"
	TagsSelector   = ".feedback__params"

	// Attachments
	PhotoSelector = ".feedback__photo"
	VideoSelector = ".feedback__video"
)

// ScrollToBottomScript moves the viewport to the end of the document.
const ScrollToBottomScript = `window.scrollTo(0, document.body.scrollHeight);`

// CountScriptTemplate counts elements matching a JSON-quoted selector.
const CountScriptTemplate = `document.querySelectorAll(%s).length`
