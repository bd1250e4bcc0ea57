package conversation

import "regexp"

// Utterance sets used to interpret answers to yes/no questions.
var (
	Yes = regexp.MustCompile(`(?i)^(yes|yea|yup|yep|ya|sure|ok|y|yeah|yah)`)
	No  = regexp.MustCompile(`(?i)^(no|nah|nope|n)`)
)
