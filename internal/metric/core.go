package metric

// Keys of the metrics the engine computes or reads itself.
const (
	KeyLines        = "lines"
	KeyNcloc        = "ncloc"
	KeyCommentLines = "comment_lines"
	KeyFiles        = "files"
	KeyFunctions    = "functions"
	KeyClasses      = "classes"
	KeyNewLines     = "new_lines"

	KeyDuplicatedBlocks       = "duplicated_blocks"
	KeyDuplicatedLines        = "duplicated_lines"
	KeyDuplicatedFiles        = "duplicated_files"
	KeyDuplicatedLinesDensity = "duplicated_lines_density"
	KeyDuplicationsData       = "duplications_data"

	KeyCoverage                  = "coverage"
	KeyNewCoverage               = "new_coverage"
	KeyNewLineCoverage           = "new_line_coverage"
	KeyNewBranchCoverage         = "new_branch_coverage"
	KeyNewLinesToCover           = "new_lines_to_cover"
	KeyNewUncoveredLines         = "new_uncovered_lines"
	KeyNewConditionsToCover      = "new_conditions_to_cover"
	KeyNewUncoveredConditions    = "new_uncovered_conditions"
	KeyNewDuplicatedLinesDensity = "new_duplicated_lines_density"

	KeyBugs               = "bugs"
	KeyNewBugs            = "new_bugs"
	KeyVulnerabilities    = "vulnerabilities"
	KeyNewVulnerabilities = "new_vulnerabilities"
	KeyCodeSmells         = "code_smells"
	KeyNewCodeSmells      = "new_code_smells"
	KeyTechnicalDebt      = "sqale_index"
	KeyComplexity         = "complexity"
	KeyDevelopmentCost    = "development_cost"
	KeyLastCommitDate     = "last_commit_date"
	KeyNclocDistribution  = "ncloc_language_distribution"

	KeyAlertStatus        = "alert_status"
	KeyQualityGateDetails = "quality_gate_details"
)

// Core returns the built-in metric catalogue. IDs are stable across runs
// because they are persisted with every measure.
func Core() []*Metric {
	return []*Metric{
		{ID: 1, Key: KeyLines, Name: "Lines", Type: TypeInt},
		{ID: 2, Key: KeyNcloc, Name: "Lines of Code", Type: TypeInt},
		{ID: 3, Key: KeyCommentLines, Name: "Comment Lines", Type: TypeInt},
		{ID: 4, Key: KeyFiles, Name: "Files", Type: TypeInt},
		{ID: 5, Key: KeyFunctions, Name: "Functions", Type: TypeInt},
		{ID: 6, Key: KeyClasses, Name: "Classes", Type: TypeInt},
		{ID: 7, Key: KeyNewLines, Name: "New Lines", Type: TypeInt},
		{ID: 8, Key: KeyDuplicatedBlocks, Name: "Duplicated Blocks", Type: TypeInt},
		{ID: 9, Key: KeyDuplicatedLines, Name: "Duplicated Lines", Type: TypeInt},
		{ID: 10, Key: KeyDuplicatedFiles, Name: "Duplicated Files", Type: TypeInt},
		{ID: 11, Key: KeyDuplicatedLinesDensity, Name: "Duplicated Lines (%)", Type: TypePercent},
		{ID: 12, Key: KeyDuplicationsData, Name: "Duplication Details", Type: TypeData},
		{ID: 13, Key: KeyCoverage, Name: "Coverage", Type: TypePercent},
		{ID: 14, Key: KeyNewCoverage, Name: "Coverage on New Code", Type: TypePercent},
		{ID: 15, Key: KeyNewLineCoverage, Name: "Line Coverage on New Code", Type: TypePercent},
		{ID: 16, Key: KeyNewBranchCoverage, Name: "Condition Coverage on New Code", Type: TypePercent},
		{ID: 17, Key: KeyNewLinesToCover, Name: "Lines to Cover on New Code", Type: TypeInt},
		{ID: 18, Key: KeyNewUncoveredLines, Name: "Uncovered Lines on New Code", Type: TypeInt},
		{ID: 19, Key: KeyNewConditionsToCover, Name: "Conditions to Cover on New Code", Type: TypeInt},
		{ID: 20, Key: KeyNewUncoveredConditions, Name: "Uncovered Conditions on New Code", Type: TypeInt},
		{ID: 21, Key: KeyNewDuplicatedLinesDensity, Name: "Duplicated Lines on New Code (%)", Type: TypePercent},
		{ID: 22, Key: KeyBugs, Name: "Bugs", Type: TypeInt},
		{ID: 23, Key: KeyNewBugs, Name: "New Bugs", Type: TypeInt},
		{ID: 24, Key: KeyVulnerabilities, Name: "Vulnerabilities", Type: TypeInt},
		{ID: 25, Key: KeyNewVulnerabilities, Name: "New Vulnerabilities", Type: TypeInt},
		{ID: 26, Key: KeyCodeSmells, Name: "Code Smells", Type: TypeInt},
		{ID: 27, Key: KeyNewCodeSmells, Name: "New Code Smells", Type: TypeInt},
		{ID: 28, Key: KeyTechnicalDebt, Name: "Technical Debt", Type: TypeWorkDuration},
		{ID: 29, Key: KeyComplexity, Name: "Cyclomatic Complexity", Type: TypeInt},
		{ID: 30, Key: KeyDevelopmentCost, Name: "Development Cost", Type: TypeString},
		{ID: 31, Key: KeyLastCommitDate, Name: "Date of Last Commit", Type: TypeMillisec},
		{ID: 32, Key: KeyNclocDistribution, Name: "Lines of Code Per Language", Type: TypeDistribution},
		{ID: 33, Key: KeyAlertStatus, Name: "Quality Gate Status", Type: TypeLevel},
		{ID: 34, Key: KeyQualityGateDetails, Name: "Quality Gate Details", Type: TypeData},
	}
}

// NewCoverageKeys is the default family of metrics subject to the small changeset rule.
func NewCoverageKeys() []string {
	return []string{
		KeyNewCoverage,
		KeyNewLineCoverage,
		KeyNewBranchCoverage,
		KeyNewLinesToCover,
		KeyNewUncoveredLines,
		KeyNewConditionsToCover,
		KeyNewUncoveredConditions,
		KeyNewDuplicatedLinesDensity,
	}
}
