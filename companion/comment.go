package companion

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"
)

// Generator answers a single prompt with no conversation state.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

const (
	diaryCommentPrompt = "用户写了一条成功日记：“%s”。作为小狗钱钱，请用一句温暖鼓励的话评价它，并以“汪！”结尾。"

	FallbackCommentEmpty  = "太棒了！汪！"
	FallbackCommentFailed = "做得真棒！汪！"
)

// DiaryCommenter asks the model for a one-line reaction to a diary entry.
type DiaryCommenter struct {
	gen Generator
	log *zap.Logger
}

func NewDiaryCommenter(gen Generator, log *zap.Logger) *DiaryCommenter {
	if log == nil {
		log = zap.NewNop()
	}
	return &DiaryCommenter{gen: gen, log: log}
}

// Comment never fails; a failed request yields a stock compliment.
func (c *DiaryCommenter) Comment(ctx context.Context, content string) string {
	reply, err := c.gen.Generate(ctx, fmt.Sprintf(diaryCommentPrompt, content))
	if err != nil {
		c.log.Warn("Diary comment generation failed", zap.Error(err))
		return FallbackCommentFailed
	}
	if strings.TrimSpace(reply) == "" {
		return FallbackCommentEmpty
	}
	return reply
}
