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

package i18n

import (
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var languageMap = map[string]language.Tag{"en": language.English, "zh": language.Chinese}

// Progress and summary messages printed to the terminal. Diagnostics keep
// the wording of the tools that produced them.
var zhMessages = map[string]string{
	"Start %s (%v/%v)":                 "开始 %s (%v/%v)",
	"Finished %s (%s, %v/%v) [%s]":     "完成 %s (%s, %v/%v) [%s]",
	"%d tasks scheduled on %d workers": "已安排 %d 个任务, 使用 %d 个工作线程",
	"Analyzing %d lines of code":       "分析 %d 行代码",
	"%d errors, %d warnings, %d notes": "%d 个错误, %d 个警告, %d 个提示",
	"%d tasks failed":                  "%d 个任务失败",
	"Results written to %s":            "结果已写入 %s",
	"Loaded configuration from %s":     "已加载配置文件 %s",
	"Finished analysis in %s":          "分析完成, 用时 %s",
}

func init() {
	for key, msg := range zhMessages {
		if err := message.SetString(language.Chinese, key, msg); err != nil {
			panic(err)
		}
	}
}

// Supported reports whether lang names a known language.
func Supported(lang string) bool {
	_, exist := languageMap[lang]
	return exist
}

// GetPrinter returns a printer for lang, falling back to English.
func GetPrinter(lang string) *message.Printer {
	var langTag language.Tag
	if _, exist := languageMap[lang]; exist {
		langTag = languageMap[lang]
	} else {
		langTag = languageMap["en"]
	}
	return message.NewPrinter(langTag)
}
