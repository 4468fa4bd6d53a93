package ac

import (
	"bytes"
	"strings"

	ahocorasick "github.com/anknown/ahocorasick"
)

var m *ahocorasick.Machine

// readRunes 将字符串字典转换为rune切片数组, 用于Aho-Corasick算法的输入格式要求
func readRunes(dict []string) (runes [][]rune) {
	for _, word := range dict {
		word = strings.ToLower(word)          // 转换为小写, 实现大小写不敏感匹配
		l := bytes.TrimSpace([]byte(word))    // 去除前后空白字符
		runes = append(runes, bytes.Runes(l)) // 将字符串转换为rune切片, 支持多字节字符
	}
	return runes
}

// InitAc 根据关键词字典初始化Aho-Corasick自动机, 空字典不构建
func InitAc(dict []string) error {
	if len(dict) == 0 {
		m = nil
		return nil
	}
	machine := new(ahocorasick.Machine)
	runes := readRunes(dict)
	if err := machine.Build(runes); err != nil { // 构建AC自动机的Trie树结构
		return err
	}
	m = machine
	return nil
}

// AcSearch 使用Aho-Corasick算法进行多模式串搜索
// stopImmediately为true时找到第一个匹配就停止
// 返回是否命中以及命中的关键词列表
func AcSearch(findText string, stopImmediately bool) (bool, []string) {
	if m == nil || len(findText) == 0 {
		return false, nil
	}

	hits := m.MultiPatternSearch([]rune(strings.ToLower(findText)), stopImmediately)
	if len(hits) > 0 {
		words := make([]string, 0, len(hits))
		for _, hit := range hits {
			words = append(words, string(hit.Word))
		}
		return true, words
	}
	return false, nil
}
