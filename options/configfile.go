/*
NaiveSystems Analyze - A tool for static code analysis
Copyright (C) 2023  Naive Systems Ltd.

This program is free software: you can redistribute it and/or modify
it under the terms of the GNU General Public License as published by
the Free Software Foundation, either version 3 of the License, or
(at your option) any later version.

This program is distributed in the hope that it will be useful,
but WITHOUT ANY WARRANTY; without even the implied warranty of
MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
GNU General Public License for more details.

You should have received a copy of the GNU General Public License
along with this program.  If not, see <https://www.gnu.org/licenses/>.
*/

package options

import (
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/golang/glog"
	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/types/known/structpb"
	"gopkg.in/yaml.v2"
	"naive.systems/clant/basic"
)

// Config file names looked up in the project directory, in order.
var ConfigFileNames = []string{".clant.json", ".clant.yaml", ".clant.yml"}

// FindConfigFile returns the first config file present in projectDir, or ""
// if there is none.
func FindConfigFile(projectDir string) string {
	for _, name := range ConfigFileNames {
		path := filepath.Join(projectDir, name)
		if info, err := os.Stat(path); err == nil && !info.IsDir() {
			return path
		}
	}
	return ""
}

// LoadConfigFile reads the project config file. Relative build_dir and
// include_dirs values are resolved against the directory of the file. A
// missing file yields empty Options.
func LoadConfigFile(projectDir string) (Options, string, error) {
	path := FindConfigFile(projectDir)
	if path == "" {
		return Options{}, "", nil
	}
	content, err := os.ReadFile(path)
	if err != nil {
		return Options{}, path, fmt.Errorf("failed to read %s: %v", path, err)
	}
	var config *structpb.Struct
	if filepath.Ext(path) == ".json" {
		config, err = decodeJSON(content)
	} else {
		config, err = decodeYAML(content)
	}
	if err != nil {
		return Options{}, path, &ConfigurationError{Path: path, Message: err.Error()}
	}
	opts, err := parseConfig(config, filepath.Dir(path))
	if err != nil {
		var configErr *ConfigurationError
		if errors.As(err, &configErr) {
			configErr.Path = path
		}
		return Options{}, path, err
	}
	glog.Infof("loaded configuration %s", path)
	return opts, path, nil
}

func decodeJSON(content []byte) (*structpb.Struct, error) {
	config := &structpb.Struct{}
	if err := protojson.Unmarshal(content, config); err != nil {
		return nil, fmt.Errorf("invalid JSON: %v", err)
	}
	return config, nil
}

func decodeYAML(content []byte) (*structpb.Struct, error) {
	raw := map[string]interface{}{}
	if err := yaml.Unmarshal(content, &raw); err != nil {
		return nil, fmt.Errorf("invalid YAML: %v", err)
	}
	config, err := structpb.NewStruct(raw)
	if err != nil {
		return nil, fmt.Errorf("unsupported YAML value: %v", err)
	}
	return config, nil
}

func parseConfig(config *structpb.Struct, projectDir string) (Options, error) {
	fields := config.GetFields()
	versionValue, ok := fields["version"]
	if !ok {
		return Options{}, &ConfigurationError{Message: "configuration file missing a version"}
	}
	version, err := stringValue("version", versionValue)
	if err != nil {
		return Options{}, err
	}
	newer, err := isNewerVersion(version, Version)
	if err != nil {
		return Options{}, err
	}
	if newer {
		basic.Warnf("configuration version %s is newer than %s", version, Version)
	}

	opts := Options{}
	for key, value := range fields {
		switch key {
		case "version":
		case "auto_headers":
			opts.AutoHeaders, err = boolValue(key, value)
		case "iwyu":
			opts.Iwyu, err = boolValue(key, value)
		case "tidy":
			opts.Tidy, err = boolValue(key, value)
		case "verbose":
			opts.Verbose, err = boolValue(key, value)
		case "jobs":
			opts.Jobs, err = intValue(key, value)
		case "build_dir":
			var dir string
			dir, err = stringValue(key, value)
			dir = absUnder(projectDir, dir)
			opts.BuildDir = &dir
		case "exclude_patterns":
			opts.ExcludePatterns, err = stringList(key, value)
		case "include_dirs":
			var dirs []string
			dirs, err = stringList(key, value)
			for _, dir := range dirs {
				opts.IncludeDirs = append(opts.IncludeDirs, absUnder(projectDir, dir))
			}
		case "mapping_files":
			opts.MappingFiles, err = stringList(key, value)
		default:
			basic.Warnf("unknown configuration key `%s'", key)
		}
		if err != nil {
			return Options{}, err
		}
	}
	return opts, nil
}

func absUnder(dir, path string) string {
	if filepath.IsAbs(path) {
		return filepath.Clean(path)
	}
	return filepath.Join(dir, path)
}

func boolValue(key string, value *structpb.Value) (*bool, error) {
	v, ok := value.GetKind().(*structpb.Value_BoolValue)
	if !ok {
		return nil, &ConfigurationError{Message: fmt.Sprintf("value for `%s' is not a bool", key)}
	}
	return &v.BoolValue, nil
}

func stringValue(key string, value *structpb.Value) (string, error) {
	v, ok := value.GetKind().(*structpb.Value_StringValue)
	if !ok {
		return "", &ConfigurationError{Message: fmt.Sprintf("value for `%s' is not a str", key)}
	}
	return v.StringValue, nil
}

func intValue(key string, value *structpb.Value) (*int, error) {
	v, ok := value.GetKind().(*structpb.Value_NumberValue)
	if !ok || v.NumberValue != math.Trunc(v.NumberValue) {
		return nil, &ConfigurationError{Message: fmt.Sprintf("value for `%s' is not an int", key)}
	}
	n := int(v.NumberValue)
	return &n, nil
}

func stringList(key string, value *structpb.Value) ([]string, error) {
	list, ok := value.GetKind().(*structpb.Value_ListValue)
	if !ok {
		return nil, &ConfigurationError{Message: fmt.Sprintf("value for `%s' is not a list", key)}
	}
	result := []string{}
	for _, element := range list.ListValue.GetValues() {
		s, ok := element.GetKind().(*structpb.Value_StringValue)
		if !ok {
			return nil, &ConfigurationError{Message: fmt.Sprintf("value in `%s' is not a str", key)}
		}
		result = append(result, s.StringValue)
	}
	return result, nil
}

func parseVersion(version string) ([3]int, error) {
	parsed := [3]int{}
	parts := strings.Split(version, ".")
	if len(parts) != 3 {
		return parsed, &ConfigurationError{Message: fmt.Sprintf("invalid version number `%s'", version)}
	}
	for i, part := range parts {
		n, err := strconv.Atoi(part)
		if err != nil {
			return parsed, &ConfigurationError{Message: fmt.Sprintf("invalid version number `%s'", version)}
		}
		parsed[i] = n
	}
	return parsed, nil
}

func isNewerVersion(version, current string) (bool, error) {
	v, err := parseVersion(version)
	if err != nil {
		return false, err
	}
	c, err := parseVersion(current)
	if err != nil {
		return false, err
	}
	for i := range v {
		if v[i] != c[i] {
			return v[i] > c[i], nil
		}
	}
	return false, nil
}
