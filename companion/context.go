// Package companion talks to the language model on behalf of Money the dog:
// it assembles the persona context, owns the chat session and turns replies
// into moods.
package companion

import (
	"fmt"
	"strings"

	"money-dog-go-be/models"
)

// Persona is the fixed system instruction for Money the dog.
const Persona = `
你现在是《小狗钱钱》书中的主角小狗“钱钱”。
你是一只拉布拉多犬，能说人类的语言，是主人的财务导师和最好的朋友。

你的性格设定：
1. **温暖、鼓励、简单**：你总是用积极的语言，不说复杂的金融术语。
2. **口头禅**：你喜欢在句子结尾偶尔加一声“汪！”或者“汪呜~”。
3. **使命**：帮助主人实现梦想，建立自信（通过成功日记），并学会让钱生钱。
4. **不评判**：即使主人乱花钱，你也会温柔地引导，而不是严厉批评。
5. **记忆**：你知道主人当前的梦想和日记。

你的功能：
- 引导用户创建梦想。
- 每天提醒用户写“成功日记”。
- 当用户完成小目标时，给予大大的赞美。

请用简短的对话形式回复，不要长篇大论。
`

const (
	NoGoalsNote = "主人目前还没有创建梦想清单。"
	NoDiaryNote = "主人还没有开始写成功日记。"

	// recentDiaryLimit caps how many diary entries reach the prompt.
	recentDiaryLimit = 3
)

// BuildContext renders the persona plus a summary of the user's goals and
// most recent diary entries. entries must be ordered newest first.
func BuildContext(goals []models.SavingsGoal, entries []models.DiaryEntry) string {
	var b strings.Builder
	b.WriteString(Persona)
	b.WriteString("\n当前上下文信息：\n")
	b.WriteString(goalSummary(goals))
	b.WriteString("\n")
	b.WriteString(diarySummary(entries))
	return b.String()
}

func goalSummary(goals []models.SavingsGoal) string {
	if len(goals) == 0 {
		return NoGoalsNote
	}
	parts := make([]string, len(goals))
	for i, g := range goals {
		parts[i] = fmt.Sprintf("%s (目标:%s, 当前:%s)", g.Title, g.TargetAmount.String(), g.CurrentAmount.String())
	}
	return "主人目前的梦想是：" + strings.Join(parts, ", ") + "。"
}

func diarySummary(entries []models.DiaryEntry) string {
	if len(entries) == 0 {
		return NoDiaryNote
	}
	if len(entries) > recentDiaryLimit {
		entries = entries[:recentDiaryLimit]
	}
	parts := make([]string, len(entries))
	for i, e := range entries {
		parts[i] = e.Content
	}
	return "主人最近的成功日记：" + strings.Join(parts, "; ") + "。"
}
