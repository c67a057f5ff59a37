package feed

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// DefaultSources are the built-in AWS feeds scanned when no sources file is
// configured.
var DefaultSources = []Source{
	{Name: "AWS What's New", URL: "https://aws.amazon.com/about-aws/whats-new/recent/feed/"},
	{Name: "AWS Security Bulletins", URL: "https://aws.amazon.com/security/security-bulletins/feed/"},
	{Name: "AWS Architecture Blog", URL: "https://aws.amazon.com/blogs/architecture/feed/"},
	{Name: "AWS Compute Blog", URL: "https://aws.amazon.com/blogs/compute/feed/"},
	{Name: "AWS Database Blog", URL: "https://aws.amazon.com/blogs/database/feed/"},
	{Name: "AWS Storage Blog", URL: "https://aws.amazon.com/blogs/storage/feed/"},
	{Name: "AWS Networking Blog", URL: "https://aws.amazon.com/blogs/networking-and-content-delivery/feed/"},
	{Name: "AWS Security Blog", URL: "https://aws.amazon.com/blogs/security/feed/"},
	{Name: "AWS Cost Management", URL: "https://aws.amazon.com/blogs/aws-cost-management/feed/"},
	{Name: "AWS Management Tools", URL: "https://aws.amazon.com/blogs/mt/feed/"},
	{Name: "AWS DevOps Blog", URL: "https://aws.amazon.com/blogs/devops/feed/"},
	{Name: "AWS Containers Blog", URL: "https://aws.amazon.com/blogs/containers/feed/"},
	{Name: "AWS Open Source Blog", URL: "https://aws.amazon.com/blogs/opensource/feed/"},
	{Name: "AWS Developer Blog", URL: "https://aws.amazon.com/blogs/developer/feed/"},
	{Name: "AWS Big Data Blog", URL: "https://aws.amazon.com/blogs/big-data/feed/"},
	{Name: "AWS Machine Learning Blog", URL: "https://aws.amazon.com/blogs/machine-learning/feed/"},
	{Name: "AWS Mobile Blog", URL: "https://aws.amazon.com/blogs/mobile/feed/"},
	{Name: "AWS IoT Blog", URL: "https://aws.amazon.com/blogs/iot/feed/"},
	{Name: "AWS Enterprise Strategy", URL: "https://aws.amazon.com/blogs/enterprise-strategy/feed/"},
	{Name: "AWS Startups Blog", URL: "https://aws.amazon.com/blogs/startups/feed/"},
	{Name: "AWS Public Sector", URL: "https://aws.amazon.com/blogs/publicsector/feed/"},
	{Name: "AWS Industries Blog", URL: "https://aws.amazon.com/blogs/industries/feed/"},
	{Name: "AWS Partner Network (APN)", URL: "https://aws.amazon.com/blogs/apn/feed/"},
	{Name: "AWS Marketplace", URL: "https://aws.amazon.com/blogs/awsmarketplace/feed/"},
}

type sourcesFile struct {
	Sources []Source `yaml:"sources"`
}

// LoadSources reads the sources file at path, falling back to DefaultSources
// when path is empty or the file does not exist.
func LoadSources(path string) ([]Source, error) {
	if path == "" {
		return DefaultSources, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return DefaultSources, nil
		}
		return nil, fmt.Errorf("failed to read sources file: %w", err)
	}

	var file sourcesFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse sources file: %w", err)
	}

	for i, src := range file.Sources {
		if src.Name == "" {
			return nil, fmt.Errorf("source at index %d is missing a name", i)
		}
		if src.URL == "" {
			return nil, fmt.Errorf("source %q is missing a URL", src.Name)
		}
	}

	return file.Sources, nil
}
