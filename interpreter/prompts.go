package interpreter

// FailToken is the reserved sentinel the model must return verbatim, and
// only it, when the counter-analysis input rules cannot be satisfied. It is
// a valid "nothing found" signal, distinct from a malformed response.
const FailToken = "IGNORE"

const analysisSystemMsg = `You analyze articles and help the user determine the main subject matter the article
is talking about along with the view points made and supporting arguments for that view point. The report you
provide should be in the following format:

 <analysis>
    <subject>[subject goes here]</subject>
    <view-points>
        <view-point>
            <point>[The point being made]</point>
            <arguments>
                <argument>[supporting argument that supports the point]</argument>
            </arguments>
        </view-point>
    </view-points>
 </analysis>

 The subject, points and arguments included in the report should be easily searchable in the original article.
`

const analysisTemplate = `
Article: %s

Report:
`

const counterSystemMsg = `Given a subject, points made about the subject and related articles, identify
which, if any that provide countering/opposite points. Your response should be in the following format:
<analysis>
    <counters>
        <counter>
            <original>[One of the original view points being opposed/countered]</original>
            <other>[The opposing/counter view point being presented]</other>
            <article-url>[article-url for counter-view-point goes here]</article-url>
        </counter>
    </counters>
</analysis>

If any of the rules below fail, simply respond with only: ` + "`" + FailToken + "`" + `.
Rules:
* Subject should be a non empty string.
* Under the ` + "`Points`" + ` section, there should be one to many points each starting with ` + "`*`" + ` and separated by newlines.
* There will be a section called ` + "`Related`" + ` under which each related article will be provided separated by two
newlines.
* Each article provided will have an ` + "`article-url`" + ` property whose value should be a non null and non empty string.
* Each article provided will have a ` + "`content`" + ` property whose value should be a non null and non empty string.

Only include counter/opposing views in the analysis, any that aren't can be ignored.
`

const counterTemplate = `
Subject:
%s

Points:
%s

Related:
%s
`

const pointTemplate = "* %s"

const relatedArticleTemplate = "article-url: %s\ncontent: %s"
