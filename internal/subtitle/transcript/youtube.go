package transcript

import "regexp"

var videoIDPatterns = []*regexp.Regexp{
	regexp.MustCompile(`^(?:https?://)?(?:www\.|m\.)?youtube\.com/watch\?(?:.*&)?v=([_\-a-zA-Z0-9]{11})`),
	regexp.MustCompile(`^(?:https?://)?(?:www\.)?youtu\.be/([_\-a-zA-Z0-9]{11})`),
	regexp.MustCompile(`^(?:https?://)?(?:www\.)?youtube\.com/(?:shorts|embed|live)/([_\-a-zA-Z0-9]{11})`),
}

var bareIDRe = regexp.MustCompile(`^[_\-a-zA-Z0-9]{11}$`)

// ExtractVideoID returns the 11-character YouTube video id in url, or "" if
// url is not a recognised YouTube link.
func ExtractVideoID(url string) string {
	for _, re := range videoIDPatterns {
		if m := re.FindStringSubmatch(url); m != nil {
			return m[1]
		}
	}
	return ""
}

// IsVideoID reports whether ref looks like a bare YouTube video id.
func IsVideoID(ref string) bool {
	return bareIDRe.MatchString(ref)
}
