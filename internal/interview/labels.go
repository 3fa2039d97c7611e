// Package interview implements the conversational interview loop: question
// generation and validation, relevant-context selection, intent classification,
// and the session state machine that ties them together.
package interview

// Generation labels, aggregated by the metrics collector.
const (
	LabelQuestionFirst          = "question_first"
	LabelQuestionFollowUp       = "question_follow_up"
	LabelQuestionAfterSkip      = "question_after_skip"
	LabelQuestionMoreRelevant   = "question_more_relevant"
	LabelQuestionTopicIntro     = "question_topic_intro"
	LabelQuestionFromSuggestion = "question_from_suggestion"
	LabelQuestionWithFeedback   = "question_with_feedback"
	LabelQuestionRetry          = "question_retry"
	LabelClassify               = "classify_intent"
	LabelContextRelevance       = "context_relevance"
	LabelTopicPick              = "topic_pick"
	LabelTopicMatch             = "topic_match"
	LabelCloneAnswer            = "clone_answer"
	LabelCloneReaction          = "clone_reaction"
	LabelCloneCombine           = "clone_combine"
)

// DefaultTopic is used when a numeric topic choice is out of range or no topics exist.
const DefaultTopic = "Generale"
