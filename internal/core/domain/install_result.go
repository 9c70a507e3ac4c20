package domain

// InstallResultKind distinguishes how an installer package produced its version.
type InstallResultKind uint8

const (
	// ResultDirect means the package embedded its version definition and it was
	// materialized without running the installer.
	ResultDirect InstallResultKind = iota + 1
	// ResultPending means the rewritten installer was executed against the game directory.
	ResultPending
)

// String returns a short name of the kind.
func (k InstallResultKind) String() string {
	switch k {
	case ResultDirect:
		return "direct"
	case ResultPending:
		return "pending"
	default:
		return "unknown"
	}
}

// InstallResult is the outcome of transforming one installer package.
type InstallResult struct {
	kind        InstallResultKind
	versionName string
	packagePath string
}

// DirectVersionName builds a result for a version definition that was materialized directly.
func DirectVersionName(name string) InstallResult {
	return InstallResult{kind: ResultDirect, versionName: name}
}

// PendingExecution builds a result for a package handed to the installer runner.
// packagePath is informational; the package is removed once the runner returns.
func PendingExecution(declaredVersion, packagePath string) InstallResult {
	return InstallResult{kind: ResultPending, versionName: declaredVersion, packagePath: packagePath}
}

// Kind returns which branch produced the result.
func (r InstallResult) Kind() InstallResultKind {
	return r.kind
}

// VersionName returns the installed version name. For pending results it is the
// name declared by the install profile.
func (r InstallResult) VersionName() string {
	return r.versionName
}

// PackagePath returns the path of the rewritten package for pending results.
func (r InstallResult) PackagePath() string {
	return r.packagePath
}
