package util

import "errors"

var (
	// ErrNoVideoFile 文案是对外契约的一部分，不要改动
	ErrNoVideoFile = errors.New("No video file uploaded.")

	ErrVideoNotFound         = errors.New("video not found")
	ErrTranscriptionFailed   = errors.New("transcription failed")
	ErrGenerationFailed      = errors.New("mcq generation failed")
	ErrAssignmentNotFound    = errors.New("assignment not found")
	ErrAssignmentSubmitted   = errors.New("assignment already submitted")
	ErrQuestionNotInSession  = errors.New("question does not belong to this assignment")
	ErrUnansweredQuestions   = errors.New("all questions must be answered before submitting")
	ErrAnswerRequired        = errors.New("current question must be answered before advancing")
	ErrNotSteppedMode        = errors.New("navigation is only available in stepped mode")
	ErrEmptyQuestionSet      = errors.New("assignment requires at least one question")
	ErrInvalidOption         = errors.New("selected option is out of range")
	ErrProgressNotFound      = errors.New("没有找到该上传的处理进度")
	ErrAIServiceNotConfigure = errors.New("AI服务地址未配置")
)
