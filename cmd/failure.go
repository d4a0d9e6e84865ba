package cmd

import (
	"ragchat/src/core/rag"
)

// describeFailure turns a pipeline error into a message suitable for the
// terminal, with recovery guidance for the common provider failures.
func describeFailure(err error) string {
	switch rag.FailureReason(err) {
	case rag.ReasonQuota:
		return "Provider quota exhausted. Wait for the quota window to reset or upgrade the plan, then retry."
	case rag.ReasonAuth:
		return "Provider rejected the credentials. Check the configured API access and restart."
	case rag.ReasonModelUnavailable:
		return "The configured model is not available. Pull it or pick another model, then retry."
	case rag.ReasonContentFiltered:
		return "The provider blocked this content. Rephrase the question and try again."
	case rag.ReasonNetwork:
		return "Could not reach the provider: " + err.Error()
	}
	return err.Error()
}
