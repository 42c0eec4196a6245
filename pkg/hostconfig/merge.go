package hostconfig

// MergeConfig merges source into target, updating Sources.
// Only non-zero values from source are applied.
func MergeConfig(target, source *HostConfig, sourceType string) {
	if source == nil {
		return
	}
	if target.Sources == nil {
		target.Sources = make(map[string]string)
	}

	mergeString(target, &target.Host, source.Host, "host", sourceType)
	mergeInt(target, &target.Port, source.Port, "port", sourceType)
	mergeString(target, &target.RootDir, source.RootDir, "rootDir", sourceType)
	mergeString(target, &target.DescriptorDir, source.DescriptorDir, "descriptorDir", sourceType)
	mergeString(target, &target.ProjectsDir, source.ProjectsDir, "projectsDir", sourceType)
	mergeString(target, &target.LogLevel, source.LogLevel, "logLevel", sourceType)
	mergeString(target, &target.LogFormat, source.LogFormat, "logFormat", sourceType)
	mergeInt(target, &target.ReadTimeout, source.ReadTimeout, "readTimeout", sourceType)
	mergeInt(target, &target.WriteTimeout, source.WriteTimeout, "writeTimeout", sourceType)
	mergeInt(target, &target.ShutdownTimeout, source.ShutdownTimeout, "shutdownTimeout", sourceType)
}

func mergeString(target *HostConfig, dst *string, v, key, sourceType string) {
	if v != "" {
		*dst = v
		target.Sources[key] = sourceType
	}
}

func mergeInt(target *HostConfig, dst *int, v int, key, sourceType string) {
	if v != 0 {
		*dst = v
		target.Sources[key] = sourceType
	}
}
