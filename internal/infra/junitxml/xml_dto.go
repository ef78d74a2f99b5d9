package junitxml

import "encoding/xml"

// xmlDocument accepts both <testsuite> and <testsuites> roots.
type xmlDocument struct {
	XMLName xml.Name
	Name    string     `xml:"name,attr"`
	Time    *string    `xml:"time,attr"`
	Suites  []xmlSuite `xml:"testsuite"`
	Cases   []xmlCase  `xml:"testcase"`
}

type xmlSuite struct {
	Name  string    `xml:"name,attr"`
	Time  *string   `xml:"time,attr"`
	Cases []xmlCase `xml:"testcase"`
}

type xmlCase struct {
	Name      string     `xml:"name,attr"`
	ClassName string     `xml:"classname,attr"`
	Time      *string    `xml:"time,attr"`
	Failure   *xmlResult `xml:"failure"`
	Error     *xmlResult `xml:"error"`
	Skipped   *xmlResult `xml:"skipped"`
}

type xmlResult struct {
	Message *string `xml:"message,attr"`
}
