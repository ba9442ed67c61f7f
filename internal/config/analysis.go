package config

import (
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/thebtf/promptscope/pkg/models"
)

// CategoryRule binds one category to the patterns that assign it. The rule
// table is evaluated in order and categories are non-exclusive.
type CategoryRule struct {
	Category models.Category
	Patterns []*regexp.Regexp
}

// IngestRules holds the ingestor's heuristic data.
type IngestRules struct {
	// ThinkingTriggers are matched case-insensitively as substrings when
	// the source record carries no trigger metadata of its own.
	ThinkingTriggers []string
	// CommandPrefixes mark records generated by command wrappers; prompts
	// starting with one of these are not user-authored and are skipped.
	CommandPrefixes []string
	// DedupPrefixRunes is how much of the text participates in the
	// dedup fingerprint.
	DedupPrefixRunes int
	CategoryRules    []CategoryRule


	// Project name decoding. These heuristics are reverse-engineered from
	// one user's directory layout; they are a best-effort, lossy transform.
	StopTokens      map[string]bool
	Acronyms        map[string]bool
	FallbackProject string
	CourseCode      *regexp.Regexp
	SemesterCode    *regexp.Regexp
}

// DetectorRules holds the anti-pattern rule thresholds and vocabularies.
type DetectorRules struct {
	ShortPromptRunes     int
	ContextWindow        int
	MinConsecutiveShort  int
	HighConsecutiveShort int
	Confirmations        []string
	FollowupPatterns     []*regexp.Regexp

	MinPasteRunes    int
	CodeRatio        float64
	ExplanationRunes int
	LongPasteRunes   int
	StackTrace       *regexp.Regexp

	VagueTerms            []string
	MinVagueHits          int
	ShortInstructionRunes int

	SessionWarnLength     int
	SessionCriticalLength int
}

// GradeThreshold maps a letter grade to its minimum overall score. The
// ladder is evaluated top-down.
type GradeThreshold struct {
	Grade string
	Min   float64
}

// HealthRules holds the health scorer's weights and grade ladder. The four
// dimension weights sum to 1.0 by construction.
type HealthRules struct {
	ClarityWeight      float64
	CompletenessWeight float64
	EfficiencyWeight   float64
	ContextWeight      float64
	Grades             []GradeThreshold
}

// QualityDimension is one weighted dimension of the prompt quality score,
// in evaluation order.
type QualityDimension struct {
	Name   string
	Weight float64
}

// QualityRules holds the prompt quality scorer's pattern tables.
type QualityRules struct {
	Dimensions []QualityDimension
	// Positive patterns per dimension. The efficiency dimension has no
	// patterns: its score is the length curve alone.
	Positive         map[string][]*regexp.Regexp
	Negative         []*regexp.Regexp
	CodeBestPractice []*regexp.Regexp

	MinExemplarRunes    int
	MaxCodeBlockDensity float64
	GoodScore           float64
	ExcellentScore      float64
}

// Analysis is the immutable heuristic configuration for the whole pipeline.
type Analysis struct {
	Ingest   IngestRules
	Detector DetectorRules
	Health   HealthRules
	Quality  QualityRules
}

// DefaultAnalysis builds the canonical rule set. Regexes are compiled once
// here; the returned value is treated as read-only by every component.
func DefaultAnalysis() Analysis {
	a := newAnalysis()
	// The user's own login name is path noise in project directories.
	if home, err := os.UserHomeDir(); err == nil {
		a.Ingest.StopTokens[strings.ToLower(filepath.Base(home))] = true
	}
	return a
}

func newAnalysis() Analysis {
	return Analysis{
		Ingest: IngestRules{
			ThinkingTriggers: []string{
				"ultrathink",
				"megathink",
				"think harder",
				"think deeply",
				"think step by step",
			},
			CommandPrefixes: []string{"<command-", "<local-command-"},
			DedupPrefixRunes: 100,
			CategoryRules:    defaultCategoryRules(),
			StopTokens: map[string]bool{
				"home": true, "users": true, "user": true, "root": true,
				"mnt": true, "media": true, "var": true, "opt": true,
				"documents": true, "desktop": true, "downloads": true,
				"workspace": true, "workspaces": true, "repos": true,
				"git": true, "github": true, "src": true, "code": true,
				"dev": true,
			},
			Acronyms: map[string]bool{
				"api": true, "cli": true, "ui": true, "ai": true,
				"ml": true, "db": true, "sql": true, "css": true,
				"html": true, "js": true, "ts": true, "mcp": true,
			},
			FallbackProject: "General",
			CourseCode:      regexp.MustCompile(`^[A-Z]{4}[0-9]{4}$`),
			SemesterCode:    regexp.MustCompile(`^[0-9]{2,4}T[0-9]$`),
		},
		Detector: DetectorRules{
			ShortPromptRunes:     20,
			ContextWindow:        5,
			MinConsecutiveShort:  2,
			HighConsecutiveShort: 5,
			Confirmations: []string{
				"yes", "no", "ok", "y", "n",
				"好", "是", "否", "确定", "取消",
			},
			FollowupPatterns: []*regexp.Regexp{
				regexp.MustCompile(`(?i)^(also[,\s]|btw\b|by the way|one more thing)`),
				regexp.MustCompile(`(?i)^(i\s+)?forgot to (say|mention|add)`),
				regexp.MustCompile(`(?i)^oh[,\s]+(and|also|wait)\b`),
				regexp.MustCompile(`^(还有|另外|补充一下|对了|顺便)`),
				regexp.MustCompile(`^(刚才.*忘了说|我忘记说了)`),
			},
			MinPasteRunes:    100,
			CodeRatio:        0.7,
			ExplanationRunes: 30,
			LongPasteRunes:   2000,
			StackTrace: regexp.MustCompile(
				`(Traceback|Error:|Exception:|at \w+\.\w+\(|Stack trace:|panic:|goroutine \d+)`),
			VagueTerms: []string{
				"make it better", "make it work", "clean it up", "fix it somehow",
				"do something", "or something", "etc", "and so on",
				"帮我", "搞一下", "弄一个", "做一下", "优化一下", "改改",
				"看看", "合适的", "更好", "之类的",
			},
			MinVagueHits:          2,
			ShortInstructionRunes: 15,
			SessionWarnLength:     50,
			SessionCriticalLength: 100,
		},
		Health: HealthRules{
			ClarityWeight:      0.30,
			CompletenessWeight: 0.25,
			EfficiencyWeight:   0.25,
			ContextWeight:      0.20,
			Grades: []GradeThreshold{
				{Grade: "A", Min: 85},
				{Grade: "B", Min: 70},
				{Grade: "C", Min: 55},
				{Grade: "D", Min: 40},
			},
		},
		Quality: QualityRules{
			Dimensions: []QualityDimension{
				{Name: "clarity", Weight: 0.25},
				{Name: "context", Weight: 0.20},
				{Name: "structure", Weight: 0.20},
				{Name: "specificity", Weight: 0.20},
				{Name: "efficiency", Weight: 0.15},
			},
			Positive: map[string][]*regexp.Regexp{
				"clarity": {
					regexp.MustCompile(`(?i)please\s+(implement|create|build|add|fix|update|refactor)`),
					regexp.MustCompile(`(?i)i\s+need\s+(to|a|an)\b`),
					regexp.MustCompile(`(?i)can\s+you\s+(help|assist|implement|create)`),
					regexp.MustCompile(`要\s*(实现|创建|添加|修复)`),
				},
				"context": {
					regexp.MustCompile(`(?i)currently\s+(the|my|we|i)\b`),
					regexp.MustCompile(`(?i)the\s+(current|existing)\s+`),
					regexp.MustCompile(`(?i)background:\s*`),
					regexp.MustCompile(`(?i)context:\s*`),
					regexp.MustCompile(`目前\s*`),
					regexp.MustCompile(`现在\s*`),
				},
				"structure": {
					regexp.MustCompile(`(?m)^\d+\.\s+`),
					regexp.MustCompile(`(?m)^-\s+`),
					regexp.MustCompile(`(?i)first,?\s+`),
					regexp.MustCompile(`(?i)then,?\s+`),
					regexp.MustCompile(`(?i)finally,?\s+`),
					regexp.MustCompile(`(?i)step\s+\d+:`),
					regexp.MustCompile(`首先`),
					regexp.MustCompile(`然后`),
					regexp.MustCompile(`最后`),
				},
				"specificity": {
					regexp.MustCompile(`(?i)\bfunction\s+\w+`),
					regexp.MustCompile(`(?i)\bclass\s+\w+`),
					regexp.MustCompile(`(?i)\bfile\s+[\w/]+\.\w+`),
					regexp.MustCompile(`(?i)in\s+the\s+\w+\s+(file|folder|directory|component)`),
					regexp.MustCompile(`(?i)using\s+(the\s+)?\w+\s+(library|framework|package)`),
					regexp.MustCompile(`在\s*[\w/]+\s*(文件|目录)`),
				},
			},
			Negative: []*regexp.Regexp{
				regexp.MustCompile(`(?i)^(help|fix|do|make)\s*$`),
				regexp.MustCompile(`(?i)^(error|bug|issue|problem)\s*$`),
				regexp.MustCompile(`(?i)^(this|it|that)\s+(is\s+)?broken`),
				regexp.MustCompile(`(?i)doesn'?t\s+work`),
				regexp.MustCompile(`^.{1,20}$`),
			},
			CodeBestPractice: []*regexp.Regexp{
				regexp.MustCompile(`(?i)with\s+(proper|good|appropriate)\s+(error|exception)\s+handling`),
				regexp.MustCompile(`(?i)include\s+(tests?|testing)`),
				regexp.MustCompile(`(?i)add\s+(comments?|documentation|docstrings?)`),
				regexp.MustCompile(`(?i)follow\s+\w+\s+(conventions?|style|patterns?)`),
				regexp.MustCompile(`(?i)type\s*(hints?|annotations?)`),
			},
			MinExemplarRunes:    30,
			MaxCodeBlockDensity: 3,
			GoodScore:           65,
			ExcellentScore:      85,
		},
	}
}

func defaultCategoryRules() []CategoryRule {
	return []CategoryRule{
		{Category: models.CategoryCodeGeneration, Patterns: []*regexp.Regexp{
			regexp.MustCompile(`(?i)\b(implement|write|create|build|add)\b.*\b(function|class|method|endpoint|component|module|feature)\b`),
			regexp.MustCompile(`(?i)\bgenerate\b.*\bcode\b`),
			regexp.MustCompile(`(实现|编写|创建).*(函数|类|接口|功能)`),
		}},
		{Category: models.CategoryBugFix, Patterns: []*regexp.Regexp{
			regexp.MustCompile(`(?i)\b(fix|debug|resolve|investigate)\b.*\b(bug|error|crash|issue|failure)\b`),
			regexp.MustCompile(`(?i)\b(exception|stack trace|panic|segfault)\b`),
			regexp.MustCompile(`(修复|报错|崩溃)`),
		}},
		{Category: models.CategoryCodeReview, Patterns: []*regexp.Regexp{
			regexp.MustCompile(`(?i)\breview\b.*\b(code|pr|pull request|change|diff)\b`),
			regexp.MustCompile(`(?i)\bany\s+(issues|problems)\s+with\b`),
			regexp.MustCompile(`(审查|评审)`),
		}},
		{Category: models.CategoryRefactoring, Patterns: []*regexp.Regexp{
			regexp.MustCompile(`(?i)\brefactor\w*\b`),
			regexp.MustCompile(`(?i)\b(simplify|extract|restructure|decouple)\b`),
			regexp.MustCompile(`重构`),
		}},
		{Category: models.CategoryTesting, Patterns: []*regexp.Regexp{
			regexp.MustCompile(`(?i)\b(unit|integration|e2e)?\s*tests?\b`),
			regexp.MustCompile(`(?i)\b(coverage|assert|mock)\b`),
			regexp.MustCompile(`(测试|用例)`),
		}},
		{Category: models.CategoryDocumentation, Patterns: []*regexp.Regexp{
			regexp.MustCompile(`(?i)\b(document|documentation|readme|docstring|changelog)\b`),
			regexp.MustCompile(`(文档|注释)`),
		}},
		{Category: models.CategoryConfigSetup, Patterns: []*regexp.Regexp{
			regexp.MustCompile(`(?i)\b(config|configure|configuration|setup|install|dependency|environment|dotenv)\b`),
			regexp.MustCompile(`(配置|安装)`),
		}},
		{Category: models.CategoryGitOperations, Patterns: []*regexp.Regexp{
			regexp.MustCompile(`(?i)\b(git|commit|branch|merge|rebase|cherry-pick|pull request|stash)\b`),
		}},
		{Category: models.CategoryFileOperations, Patterns: []*regexp.Regexp{
			regexp.MustCompile(`(?i)\b(create|move|rename|delete|copy)\b.*\b(file|folder|directory)\b`),
			regexp.MustCompile(`(?i)\b(mkdir|chmod|symlink)\b`),
		}},
		{Category: models.CategorySearchExplore, Patterns: []*regexp.Regexp{
			regexp.MustCompile(`(?i)\b(find|search|locate|grep|look for|where is)\b`),
			regexp.MustCompile(`(查找|搜索|在哪)`),
		}},
		{Category: models.CategoryExtendedThink, Patterns: []*regexp.Regexp{
			regexp.MustCompile(`(?i)(ultrathink|megathink|think\s+(harder|deeply|step by step))`),
		}},
		{Category: models.CategoryQuestion, Patterns: []*regexp.Regexp{
			regexp.MustCompile(`(?i)^(what|why|how|when|where|who|which|can|could|should|is|are|does|do)\b`),
			regexp.MustCompile(`[?？]\s*$`),
			regexp.MustCompile(`(什么|为什么|怎么)`),
		}},
	}
}
