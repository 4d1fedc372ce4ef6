package model

// File represents a single source file discovered during ingest.
type File struct {
	Top
	File string
}

func (f *File) GetAPrimaryQlClass() string {
	return "File"
}

// IsSourceFile reports whether the file is a JVM-family source file
// (Java or Kotlin). Other languages are handled through their own
// parser front ends and never reach this check.
func (f *File) IsSourceFile() bool {
	return f.IsJavaSourceFile() || f.IsKotlinSourceFile()
}

func (f *File) IsJavaSourceFile() bool {
	return len(f.File) > len(".java") && f.File[len(f.File)-len(".java"):] == ".java"
}

func (f *File) IsKotlinSourceFile() bool {
	return len(f.File) > len(".kt") && f.File[len(f.File)-len(".kt"):] == ".kt"
}

// Package is a Java/Kotlin package declaration.
type Package struct {
	Package string
}

func (p *Package) GetAPrimaryQlClass() string {
	return "Package"
}

func (p *Package) GetURL() string {
	return p.Package
}

// CompilationUnit is a single parsed file, named and scoped to a package.
type CompilationUnit struct {
	File
	CuPackage Package
	Name      string
}

func (c *CompilationUnit) GetAPrimaryQlClass() string {
	return "CompilationUnit"
}

func (c *CompilationUnit) GetName() string {
	return c.Name
}

func (c *CompilationUnit) GetPackage() Package {
	return c.CuPackage
}

func (c *CompilationUnit) HasName(name string) bool {
	return c.Name == name
}

func (c *CompilationUnit) ToString() string {
	return c.Name
}

// JarFile is a packaged archive with manifest metadata, produced by the
// Java ingest path when a dependency is supplied as a jar rather than
// loose sources.
type JarFile struct {
	File
	JarFile                 string
	ImplementationVersion   string
	SpecificationVersion    string
	ManifestEntryAttributes map[string]map[string]string
	ManifestMainAttributes  map[string]string
}

func (j *JarFile) GetAPrimaryQlClass() string {
	return "JarFile"
}

func (j *JarFile) GetJarFile() string {
	return j.JarFile
}

func (j *JarFile) GetImplementationVersion() string {
	return j.ImplementationVersion
}

func (j *JarFile) GetSpecificationVersion() string {
	return j.SpecificationVersion
}

func (j *JarFile) GetManifestEntryAttributes(entry, key string) (string, bool) {
	if attrs, exists := j.ManifestEntryAttributes[entry]; exists {
		if value, ok := attrs[key]; ok {
			return value, true
		}
	}
	return "", false
}

func (j *JarFile) GetManifestMainAttributes(key string) (string, bool) {
	if value, ok := j.ManifestMainAttributes[key]; ok {
		return value, true
	}
	return "", false
}
